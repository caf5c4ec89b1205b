package controllers

import (
	"net/http"
	"path/filepath"

	"github.com/shashiranjanraj/orderdesk/config"
)

// PageController serves the two static HTML pages.
type PageController struct {
	dir string
}

func NewPageController() *PageController {
	return &PageController{dir: config.PublicDir()}
}

// Index handles GET /.
func (c *PageController) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(c.dir, "index.html"))
}

// Panel handles GET /panel.html.
func (c *PageController) Panel(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(c.dir, "panel.html"))
}
