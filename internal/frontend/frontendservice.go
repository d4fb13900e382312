package frontend

import (
	"net/http"

	"github.com/jo-hoe/gogallery/internal/core"
	"github.com/labstack/echo/v4"
)

const MainPageName = "index.html"

// FrontendService serves the static tree and redirects the root URL to the
// landing page.
type FrontendService struct {
	config *core.ServiceConfig
}

func NewFrontendService(config *core.ServiceConfig) *FrontendService {
	return &FrontendService{
		config: config,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.GET("/", service.rootRedirectHandler)
	e.Static(service.config.Storage.StaticURLPrefix, service.config.Storage.StaticRoot)
}

// rootRedirectHandler redirects the root path to the static landing page.
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusFound, service.config.Storage.StaticURLPrefix+"/"+MainPageName)
}
