package utils

import "github.com/gin-gonic/gin"

// Renderer is the view-rendering collaborator. Handlers hand it a template
// identifier plus named values and never inspect the produced page, so tests
// can substitute a recording implementation.
type Renderer interface {
	Render(ctx *gin.Context, status int, name string, values gin.H)
}

// TemplateRenderer renders through gin's HTML template engine
// (templates loaded once at router setup).
type TemplateRenderer struct{}

// Render writes the named template with the given values.
func (TemplateRenderer) Render(ctx *gin.Context, status int, name string, values gin.H) {
	ctx.HTML(status, name, values)
}
