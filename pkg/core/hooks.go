package core

// UseController creates a controller and registers it for disposal when the
// state is disposed.
//
//	func (s *mapState) InitState() {
//	    s.orchestrator = core.UseController(s, func() *amap.Orchestrator {
//	        return amap.NewOrchestrator(deps)
//	    })
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}
