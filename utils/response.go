package utils

import (
	"github.com/kataras/iris/v12"
)

// Pagination is the envelope block returned with every message listing.
type Pagination struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"perPage"`
	Total   int64 `json:"total"`
}

// NewPagination computes the page count from a total row count.
func NewPagination(page, perPage int, total int64) Pagination {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{Page: page, Pages: pages, PerPage: perPage, Total: total}
}

// CreateError writes the {Error, SubCode} body used by every non-401 failure.
func CreateError(statusCode int, errMsg string, subCode string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{"Error": errMsg, "SubCode": subCode})
}

func CreateMessagesNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "No messages found", "NotFound", ctx)
}

func CreateAccessOtherUserMessage(ctx iris.Context) {
	CreateError(iris.StatusForbidden, "Message is not owned by requesting user", "AccessOtherUserMessage", ctx)
}

// CreateInvalidToken writes the 401 body emitted for any missing or invalid
// bearer token. Shape is {"SubCode": "InvalidToken"} only, no Error field.
func CreateInvalidToken(ctx iris.Context) {
	ctx.StatusCode(iris.StatusUnauthorized)
	ctx.JSON(iris.Map{"SubCode": "InvalidToken"})
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal server error", "InternalServerError", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not found", "NotFound", ctx)
}
