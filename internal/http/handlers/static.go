package handlers

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// StaticHandler serves the login and signup pages. Everything else the
// frontend needs is hosted separately; these two exist so the bare origin
// lands somewhere useful.
type StaticHandler struct {
	dir string
}

func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{dir: dir}
}

func (h *StaticHandler) Login(ctx *gin.Context) {
	ctx.File(filepath.Join(h.dir, "login.html"))
}

func (h *StaticHandler) SignUp(ctx *gin.Context) {
	ctx.File(filepath.Join(h.dir, "signup.html"))
}
