package server

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taigrr/meshview/pkg/loader"
	"github.com/taigrr/meshview/pkg/viewport"
)

var errUnknownMessage = errors.New("unknown message type")

// dispatch applies one request. Everything but load runs as a single step
// on the frame loop; load fetches off the loop first.
func (s *Server) dispatch(ctx context.Context, req Request) Response {
	if req.Type == MsgLoad {
		return s.dispatchLoad(ctx, req)
	}
	var resp Response
	err := s.loop.Call(ctx, func() error {
		var err error
		resp, err = s.apply(req)
		return err
	})
	if err != nil {
		return s.failure(req, err)
	}
	return resp
}

func (s *Server) dispatchLoad(ctx context.Context, req Request) Response {
	desc, err := loader.Describe(req.URL)
	if err != nil {
		return s.failure(req, err)
	}
	if err := s.Load(ctx, desc); err != nil {
		return s.failure(req, err)
	}
	return s.state(MsgResult, req.ID)
}

// apply runs on the loop.
func (s *Server) apply(req Request) (Response, error) {
	v := s.viewer
	resp := Response{Type: MsgResult, ID: req.ID}
	switch req.Type {
	case MsgDrag:
		v.Drag(req.DX, req.DY)
	case MsgWheel:
		v.Wheel(req.DeltaY)
	case MsgViewport:
		v.SetViewport(req.Width, req.Height)
	case MsgZoomIn:
		v.Controls().ZoomIn()
	case MsgZoomOut:
		v.Controls().ZoomOut()
	case MsgRotateLeft:
		v.Controls().RotateLeft()
	case MsgRotateRight:
		v.Controls().RotateRight()
	case MsgFullscreen:
		if err := v.Controls().ToggleFullscreen(); err != nil {
			return resp, err
		}
	case MsgClick:
		// A miss is not an error; the reply simply carries no mesh.
		if ref, ok := v.Click(req.X, req.Y); ok {
			resp.Mesh = &ref
		}
	case MsgSelect:
		if req.Mesh == nil {
			return resp, viewport.ErrNoSelection
		}
		if err := v.Select(*req.Mesh); err != nil {
			return resp, err
		}
		resp.Mesh = req.Mesh
	case MsgEdit:
		if err := v.Edit(req.Label, req.Description); err != nil {
			return resp, err
		}
	case MsgSave:
		a, err := v.SaveAnnotation()
		if err != nil {
			return resp, err
		}
		resp.Annotation = &a
	case MsgCancel:
		v.CancelSelection()
	case MsgSearch:
		info, err := v.Search(req.Query)
		if err != nil {
			return resp, err
		}
		resp.Focus = &info
	case MsgFocus:
		if req.Mesh == nil {
			return resp, viewport.ErrMeshNotFound
		}
		info, err := v.FocusMesh(*req.Mesh)
		if err != nil {
			return resp, err
		}
		resp.Focus = &info
	case MsgState:
		return s.snapshot(MsgResult, req.ID), nil
	default:
		return resp, fmt.Errorf("%q: %w", req.Type, errUnknownMessage)
	}
	cam := v.Camera()
	resp.Camera = &cam
	resp.Selection = v.Selection().State().String()
	return resp, nil
}

func (s *Server) failure(req Request, err error) Response {
	switch {
	case errors.Is(err, viewport.ErrSearchNotFound), errors.Is(err, viewport.ErrEmptyQuery):
		s.log.Info("search returned nothing", zap.String("query", req.Query))
	default:
		s.log.Warn("request failed", zap.String("type", req.Type), zap.Error(err))
	}
	return Response{Type: MsgError, ID: req.ID, Error: err.Error()}
}
