package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/pledge/internal/api"
	"github.com/mmynk/pledge/internal/commitment"
)

// CommitmentService serves the commitment procedures.
type CommitmentService struct {
	store *commitment.Store
}

// NewCommitmentService creates a new CommitmentService over an initialized store.
func NewCommitmentService(store *commitment.Store) *CommitmentService {
	return &CommitmentService{store: store}
}

// NewCommitmentServiceHandler builds an HTTP handler for every commitment
// procedure. It returns the path prefix to mount it on.
func NewCommitmentServiceHandler(svc *CommitmentService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(api.CreateCommitmentProcedure, connect.NewUnaryHandler(api.CreateCommitmentProcedure, svc.CreateCommitment, opts...))
	mux.Handle(api.RevealCommitmentProcedure, connect.NewUnaryHandler(api.RevealCommitmentProcedure, svc.RevealCommitment, opts...))
	mux.Handle(api.GetCommitmentStatusProcedure, connect.NewUnaryHandler(api.GetCommitmentStatusProcedure, svc.GetCommitmentStatus, opts...))
	mux.Handle(api.ListCommitmentsProcedure, connect.NewUnaryHandler(api.ListCommitmentsProcedure, svc.ListCommitments, opts...))
	return "/" + api.CommitmentServiceName + "/", mux
}

// CreateCommitment seals a new commitment.
func (s *CommitmentService) CreateCommitment(ctx context.Context, req *connect.Request[api.CreateCommitmentRequest]) (*connect.Response[api.CreateCommitmentResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	id, err := s.store.Create(ctx, commitment.CreateParams{
		Text:     req.Msg.Text,
		Deadline: req.Msg.Deadline,
		Stake:    req.Msg.Stake,
	})
	if err != nil {
		return nil, toConnectError("CreateCommitment", err)
	}
	return connect.NewResponse(&api.CreateCommitmentResponse{CommitmentID: id}), nil
}

// RevealCommitment opens a commitment whose deadline has passed.
func (s *CommitmentService) RevealCommitment(ctx context.Context, req *connect.Request[api.RevealCommitmentRequest]) (*connect.Response[api.RevealCommitmentResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	c, err := s.store.Reveal(ctx, req.Msg.CommitmentID)
	if err != nil {
		return nil, toConnectError("RevealCommitment", err)
	}
	return connect.NewResponse(&api.RevealCommitmentResponse{
		CommitmentID: c.ID,
		Text:         c.Text,
		Deadline:     c.Deadline,
		Stake:        c.Stake,
		Fingerprint:  c.Fingerprint,
		RevealedAt:   c.RevealedAt,
	}), nil
}

// GetCommitmentStatus returns the public view of a commitment.
func (s *CommitmentService) GetCommitmentStatus(ctx context.Context, req *connect.Request[api.GetCommitmentStatusRequest]) (*connect.Response[api.GetCommitmentStatusResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	status, err := s.store.Status(ctx, req.Msg.CommitmentID)
	if err != nil {
		return nil, toConnectError("GetCommitmentStatus", err)
	}
	return connect.NewResponse(&api.GetCommitmentStatusResponse{Commitment: status}), nil
}

// ListCommitments returns every commitment in creation order.
func (s *CommitmentService) ListCommitments(ctx context.Context, req *connect.Request[api.ListCommitmentsRequest]) (*connect.Response[api.ListCommitmentsResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	views, err := s.store.List(ctx)
	if err != nil {
		return nil, toConnectError("ListCommitments", err)
	}
	return connect.NewResponse(&api.ListCommitmentsResponse{Commitments: views}), nil
}
