package backend

import (
	"net/http"
	"strings"
)

// Route names one backend endpoint.
type Route string

const (
	RouteMediaList       Route = "media.list"
	RouteExtrasList      Route = "extras.list"
	RouteExtrasDownload  Route = "extras.download"
	RouteExtrasDelete    Route = "extras.delete"
	RouteExtrasStatus    Route = "extras.status"
	RouteBlacklistList   Route = "blacklist.list"
	RouteBlacklistRemove Route = "blacklist.remove"
	RouteTasksStatus     Route = "tasks.status"
	RouteTasksForce      Route = "tasks.force"
	RouteTasksQueue      Route = "tasks.queue"
	RouteSettingsGet     Route = "settings.get"
	RouteSettingsSave    Route = "settings.save"
)

type endpoint struct {
	method string
	// path may contain {kind}, {id}, and {section} placeholders.
	path string
}

// routeTable maps each route to its endpoint. It is built once per Client.
type routeTable map[Route]endpoint

func defaultRoutes() routeTable {
	return routeTable{
		RouteMediaList:       {http.MethodGet, "/api/{kind}"},
		RouteExtrasList:      {http.MethodGet, "/api/{kind}/{id}/extras"},
		RouteExtrasDownload:  {http.MethodPost, "/api/extras/download"},
		RouteExtrasDelete:    {http.MethodPost, "/api/extras/delete"},
		RouteExtrasStatus:    {http.MethodPost, "/api/extras/status/batch"},
		RouteBlacklistList:   {http.MethodGet, "/api/blacklist/extras"},
		RouteBlacklistRemove: {http.MethodPost, "/api/blacklist/extras/remove"},
		RouteTasksStatus:     {http.MethodGet, "/api/tasks/status"},
		RouteTasksForce:      {http.MethodPost, "/api/tasks/force"},
		RouteTasksQueue:      {http.MethodGet, "/api/tasks/queue"},
		RouteSettingsGet:     {http.MethodGet, "/api/settings/{section}"},
		RouteSettingsSave:    {http.MethodPost, "/api/settings/{section}"},
	}
}

func (e endpoint) expand(params map[string]string) string {
	path := e.path
	for key, value := range params {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}
	return path
}
