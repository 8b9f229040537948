package httphandler

import (
	"github.com/gaze-network/pool-portal/common"
	"github.com/gaze-network/pool-portal/internal/portal"
)

type HttpHandler struct {
	portal *portal.Portal
}

func New(portal *portal.Portal) *HttpHandler {
	return &HttpHandler{portal: portal}
}

type HttpResponse[T any] common.HttpResponse[T]

func newResponse[T any](result T) HttpResponse[T] {
	return HttpResponse[T](common.NewHttpResponse(result))
}
