package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

// SetupRoutes injects the web pages, the library api and the ops
// endpoints if required.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()
	api.SetupWebRoutes(router, m)
	api.SetupLibraryRoutes(router, m)
	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	return router
}

// SetupLibraryRoutes injects the library related api endpoints.
func (api *APIHandler) SetupLibraryRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/status", m.public(api.Status))

	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.PUT("/v1/books/:id/copies", m.public(api.UpdateBookCopies))

	router.POST("/v1/members", m.public(api.CreateMember))
	router.GET("/v1/members", m.public(api.GetAllMembers))
	router.GET("/v1/members/:id", m.public(api.GetOneMember))

	router.POST("/v1/loans", m.public(api.BorrowBook))
	router.POST("/v1/returns", m.public(api.ReturnBook))

	router.GET("/v1/dashboard", m.public(api.GetDashboard))
	router.GET("/v1/trail", m.public(api.GetTrail))
	return router
}

// SetupWebRoutes injects the HTML form pages.
func (api *APIHandler) SetupWebRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public(api.Index))
	router.GET("/dashboard", m.public(api.DashboardPage))
	router.GET("/books", m.public(api.BooksPage))
	router.POST("/books/add", m.public(api.AddBookForm))
	router.POST("/books/edit", m.public(api.EditBookForm))
	router.GET("/members", m.public(api.MembersPage))
	router.POST("/members/add", m.public(api.AddMemberForm))
	router.GET("/borrow", m.public(api.BorrowPage))
	router.POST("/borrow", m.public(api.BorrowForm))
	router.GET("/return", m.public(api.ReturnPage))
	router.POST("/return", m.public(api.ReturnForm))
	return router
}

// SetupOpsRoutes injects internal operations related endpoints.
func (api *APIHandler) SetupOpsRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/ops/configs", m.ops(api.GetConfigs))
	router.GET("/ops/stats", m.ops(api.GetStatistics))
	router.GET("/ops/maintenance", m.ops(api.Maintenance))
	router.GET("/ops/debug/vars", m.ops(GetMemStats))
	router.GET("/ops/debug/gc", m.ops(api.RunGC))
	router.GET("/ops/debug/fos", m.ops(api.FreeOSMemory))

	if api.config.ProfilerEnable {
		router.GET("/ops/debug/pprof/", m.ops(api.OpsHandlerWrapper(http.HandlerFunc(pprof.Index))))
		router.GET("/ops/debug/pprof/profile", m.ops(api.GetCPUProfile))
		router.GET("/ops/debug/pprof/trace", m.ops(api.GetTraceProfile))
		router.GET("/ops/debug/pprof/symbol", m.ops(api.GetSymbol))
		router.GET("/ops/debug/pprof/cmdline", m.ops(api.GetCmdLine))
		router.GET("/ops/debug/pprof/heap", m.ops(api.OpsHandlerWrapper(pprof.Handler("heap"))))
		router.GET("/ops/debug/pprof/allocs", m.ops(api.OpsHandlerWrapper(pprof.Handler("allocs"))))
		router.GET("/ops/debug/pprof/goroutine", m.ops(api.OpsHandlerWrapper(pprof.Handler("goroutine"))))
		router.GET("/ops/debug/pprof/block", m.ops(api.OpsHandlerWrapper(pprof.Handler("block"))))
		router.GET("/ops/debug/pprof/mutex", m.ops(api.OpsHandlerWrapper(pprof.Handler("mutex"))))
	}

	return router
}
