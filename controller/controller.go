package controller

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"flipbook/store"
	"flipbook/utils"
)

// ObjectStore is the blob storage used for uploaded page images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Deps are the process-wide resources handlers need.
type Deps struct {
	Store store.Store
	// Objects is optional; uploads are disabled and no URLs are signed
	// when it is nil.
	Objects        ObjectStore
	RequestTimeout time.Duration
	SignedURLTTL   time.Duration

	// Now and NewShareID default to the real clock and utils.NewShareID.
	Now        func() time.Time
	NewShareID func(time.Time) (string, error)
}

// Controller serves every flipbook route.
type Controller struct {
	store        store.Store
	objects      ObjectStore
	timeout      time.Duration
	signedURLTTL time.Duration
	clock        func() time.Time
	newShareID   func(time.Time) (string, error)
}

func New(d Deps) *Controller {
	h := &Controller{
		store:        d.Store,
		objects:      d.Objects,
		timeout:      d.RequestTimeout,
		signedURLTTL: d.SignedURLTTL,
		clock:        d.Now,
		newShareID:   d.NewShareID,
	}
	if h.timeout <= 0 {
		h.timeout = 10 * time.Second
	}
	if h.signedURLTTL <= 0 {
		h.signedURLTTL = 10 * time.Minute
	}
	if h.clock == nil {
		h.clock = time.Now
	}
	if h.newShareID == nil {
		h.newShareID = utils.NewShareID
	}
	return h
}

// now is truncated to the millisecond precision the store keeps, so the
// value echoed to clients matches what a later read returns.
func (h *Controller) now() time.Time {
	return h.clock().UTC().Truncate(time.Millisecond)
}

func (h *Controller) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

var validate = validator.New()

// bindJSON decodes the request body into dst and runs struct validation. A
// missing body decodes as an empty object.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return validate.Struct(dst)
}
