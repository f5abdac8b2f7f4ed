// Package router assembles the gin engine: middleware stack, versioned API
// groups and static dashboard assets.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIVersion is the version segment of the API prefix
const APIVersion = "v1"

// APIPrefix returns the mount point of version, e.g. /api/v1
func APIPrefix(version string) string {
	return "/api/" + version
}

// Route is one handler bound to a method and a path relative to its group
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

// RouteInfo is a route without its handler, with the group prefix applied
type RouteInfo struct {
	Method string
	Path   string
}

// Group is the route table of one screen or resource
type Group struct {
	Name   string
	Prefix string
	Routes []Route
}

func get(path string, h gin.HandlerFunc) Route { return Route{http.MethodGet, path, h} }
func post(path string, h gin.HandlerFunc) Route { return Route{http.MethodPost, path, h} }
func put(path string, h gin.HandlerFunc) Route { return Route{http.MethodPut, path, h} }
func del(path string, h gin.HandlerFunc) Route { return Route{http.MethodDelete, path, h} }

// Table lists the routes of g with the prefix applied
func (g Group) Table() []RouteInfo {
	out := make([]RouteInfo, 0, len(g.Routes))
	for _, r := range g.Routes {
		out = append(out, RouteInfo{Method: r.Method, Path: joinPath(g.Prefix, r.Path)})
	}
	return out
}

// Mount registers every group below rg. Middleware applies to all of them.
func Mount(rg *gin.RouterGroup, groups []Group, middleware ...gin.HandlerFunc) {
	if len(middleware) > 0 {
		rg.Use(middleware...)
	}
	for _, g := range groups {
		sub := rg.Group(g.Prefix)
		for _, r := range g.Routes {
			sub.Handle(r.Method, r.Path, r.Handler)
		}
	}
}

func joinPath(prefix, path string) string {
	if path == "" || path == "/" {
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}
