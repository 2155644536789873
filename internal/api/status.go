package api

import (
	"net/http"

	"github.com/dynfan/dynfan/internal/statistics"
	"github.com/labstack/echo/v4"
)

func registerStatusEndpoints(rest *echo.Echo, source statistics.StatusSource) {
	group := rest.Group("/status")

	group.GET("/", func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, source.Status(), indentationChar)
	})

	group.GET("/channel/:"+urlParamId+"/", func(c echo.Context) error {
		id := c.Param(urlParamId)
		for _, channel := range source.Status().Channels {
			if channel.ID == id {
				return c.JSONPretty(http.StatusOK, channel, indentationChar)
			}
		}
		return returnNotFound(c, id)
	})
}
