package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/blogmhq/blogm/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.routeNotFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/api/v2/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/api/v2/users", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/v2/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/api/v2/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodPost, "/api/v2/oauth/google", app.googleOAuthHandler)

	// blog service
	router.HandlerFunc(http.MethodGet, "/api/v2/blogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/api/v2/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/v2/blogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/api/v2/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/api/v2/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	// comments and likes
	router.HandlerFunc(http.MethodPost, "/api/v2/comments/:blogId/message", app.requireAuthUser(app.addCommentHandler))
	router.HandlerFunc(http.MethodGet, "/api/v2/comments/:blogId", app.getCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/api/v2/blogs/:id/like", app.requireAuthUser(app.toggleLikeHandler))
	router.HandlerFunc(http.MethodGet, "/api/v2/blogs/:id/likes", app.getLikesHandler)

	// subscriber service
	router.HandlerFunc(http.MethodPost, "/api/v2/subscribers/subscribe", app.subscribeHandler)
	router.HandlerFunc(http.MethodGet, "/api/v2/subscribers/unsubscribe", app.unsubscribeHandler)
	router.HandlerFunc(http.MethodGet, "/api/v2/subscribers", app.requireRole(app.listSubscribersHandler, userservice.RoleAdmin))

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
