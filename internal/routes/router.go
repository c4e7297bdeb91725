package routes

import (
	"net/http"

	"task-tracker/internal/controller"
	"task-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Route binds a method and path pattern to a handler. ":name" segments are
// path parameters.
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// TaskRoutes returns the task API route table.
func TaskRoutes(tc *controller.TaskController) []Route {
	return []Route{
		{http.MethodGet, "/tasks", tc.ListTasks},
		{http.MethodPost, "/tasks", tc.CreateTask},
		{http.MethodPut, "/tasks/:id", tc.UpdateTask},
		{http.MethodDelete, "/tasks/:id", tc.DeleteTask},
		{http.MethodPatch, "/tasks/:id/complete", tc.ToggleComplete},
	}
}

// Router builds the HTTP engine. corsOrigins may be nil to allow any origin.
func Router(tc *controller.TaskController, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(), middleware.CORS(corsOrigins))

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)
	router.GET("/ready", tc.Ready)

	for _, r := range TaskRoutes(tc) {
		router.Handle(r.Method, r.Path, r.Handler)
	}
	return router
}
