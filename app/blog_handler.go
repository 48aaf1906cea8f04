package main

import (
	"errors"
	"net/http"

	"github.com/blogmhq/blogm/internal/blogservice"
	"github.com/blogmhq/blogm/internal/common"
)

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	claims := app.getUserContext(r)
	input.AuthorID = claims.UserID

	blog, err := app.blogService.CreateBlog(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrDuplicateSlug):
			app.writeErrorResponse(w, r, http.StatusBadRequest, "A blog with this title already exists. Please use a different title.", nil)
		case errors.Is(err, blogservice.ErrUserForeignKey):
			app.unAuthorizedErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Post-persist hook: failures inside the publisher are logged there and
	// never fail the request.
	app.notifier.NotifyBlogPublished(r.Context(), blog)

	err = app.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Blog created successfully", Data: blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Blog retrieved successfully", Data: blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getAllBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogs(r.Context(), limit, offset)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Blogs retrieved successfully", Data: blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input blogservice.UpdateBlogRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	dbBlog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	claims := app.getUserContext(r)
	if dbBlog.AuthorID != claims.UserID {
		app.unAuthorizedErrorResponse(w, r)
		return
	}

	blog, err := app.blogService.UpdateBlog(r.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Blog updated successfully", Data: blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	dbBlog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	claims := app.getUserContext(r)
	if dbBlog.AuthorID != claims.UserID {
		app.unAuthorizedErrorResponse(w, r)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Blog deleted successfully", Data: nil}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input addCommentRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	claims := app.getUserContext(r)

	comment, err := app.blogService.AddComment(r.Context(), blogID, claims.UserID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Comment added successfully", Data: comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getCommentsHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comments, err := app.blogService.GetComments(r.Context(), blogID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Comments retrieved successfully", Data: comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// toggleLikeHandler flips the caller's like on a blog: 201 when the toggle
// landed on liked, 200 when it landed on unliked.
func (app *application) toggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	claims := app.getUserContext(r)

	outcome, err := app.blogService.ToggleLike(r.Context(), claims.UserID, blogID)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r, "Blog not found")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if outcome.Liked {
		err = app.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Blog liked successfully", Data: outcome.Like}, nil)
	} else {
		err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Blog unliked successfully", Data: nil}, nil)
	}
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// getLikesHandler never 404s: likes for an unknown blog are an empty list.
func (app *application) getLikesHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	likes, err := app.blogService.GetLikes(r.Context(), blogID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Likes retrieved successfully", Data: map[string]any{"likes": likes, "count": len(likes)}}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
