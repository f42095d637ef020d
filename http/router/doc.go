// Package router registers Routes and their middleware stacks on a mux.Router.
package router
