package router

import (
	"github.com/sddportal/backend/internal/interfaces/http/handler"
)

// UploadRoutes mounts upload CRUD and the batch void under /uploads
func UploadRoutes(uploads *handler.UploadHandler, submissions *handler.SubmissionHandler) *DomainGroup {
	g := NewDomainGroup("uploads", "/uploads")
	g.POST("", uploads.Create)
	g.GET("", uploads.List)
	g.GET("/:id", uploads.Get)
	g.DELETE("/:id", uploads.Delete)
	g.DELETE("/:id/records/:index", uploads.DeleteRecord)
	g.POST("/:id/void-approved", submissions.VoidApproved)
	return g
}

// RowRoutes mounts single-row submission under /rows
func RowRoutes(submissions *handler.SubmissionHandler) *DomainGroup {
	return NewDomainGroup("rows", "/rows").
		POST("/:uploadId/:rowIndex/submit", submissions.SubmitRow)
}

// SystemRoutes mounts system info and ping under /system
func SystemRoutes(system *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", system.GetSystemInfo).
		GET("/ping", system.Ping)
}
