package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/pledge/internal/api"
	"github.com/mmynk/pledge/internal/models"
	"github.com/mmynk/pledge/internal/settlement"
)

// SplitService serves the split and participant procedures.
type SplitService struct {
	store *settlement.Store
}

// NewSplitService creates a new SplitService over an initialized store.
func NewSplitService(store *settlement.Store) *SplitService {
	return &SplitService{store: store}
}

// NewSplitServiceHandler builds an HTTP handler for every split procedure.
// It returns the path prefix to mount it on.
func NewSplitServiceHandler(svc *SplitService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(api.CreateSplitProcedure, connect.NewUnaryHandler(api.CreateSplitProcedure, svc.CreateSplit, opts...))
	mux.Handle(api.AddContributionProcedure, connect.NewUnaryHandler(api.AddContributionProcedure, svc.AddContribution, opts...))
	mux.Handle(api.GetSplitStatusProcedure, connect.NewUnaryHandler(api.GetSplitStatusProcedure, svc.GetSplitStatus, opts...))
	mux.Handle(api.GetParticipantViewProcedure, connect.NewUnaryHandler(api.GetParticipantViewProcedure, svc.GetParticipantView, opts...))
	mux.Handle(api.VerifySplitIntegrityProcedure, connect.NewUnaryHandler(api.VerifySplitIntegrityProcedure, svc.VerifySplitIntegrity, opts...))
	mux.Handle(api.ListParticipantSplitsProcedure, connect.NewUnaryHandler(api.ListParticipantSplitsProcedure, svc.ListParticipantSplits, opts...))
	mux.Handle(api.GetParticipantProcedure, connect.NewUnaryHandler(api.GetParticipantProcedure, svc.GetParticipant, opts...))
	return "/" + api.SplitServiceName + "/", mux
}

// CreateSplit creates a pending split. Any authenticated participant may
// create a split, including one they are not part of.
func (s *SplitService) CreateSplit(ctx context.Context, req *connect.Request[api.CreateSplitRequest]) (*connect.Response[api.CreateSplitResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	id, err := s.store.CreateSplit(ctx, settlement.CreateSplitParams{
		Description:    req.Msg.Description,
		TotalAmount:    req.Msg.TotalAmount,
		ParticipantIDs: req.Msg.ParticipantIDs,
		SplitType:      models.SplitType(req.Msg.SplitType),
		CustomAmounts:  req.Msg.CustomAmounts,
	})
	if err != nil {
		return nil, toConnectError("CreateSplit", err)
	}
	return connect.NewResponse(&api.CreateSplitResponse{SplitID: id}), nil
}

// AddContribution records the caller's contribution.
func (s *SplitService) AddContribution(ctx context.Context, req *connect.Request[api.AddContributionRequest]) (*connect.Response[api.AddContributionResponse], error) {
	if err := callerFor(ctx, req.Msg.ParticipantID); err != nil {
		return nil, err
	}

	receipt, err := s.store.AddContribution(ctx, req.Msg.SplitID, req.Msg.ParticipantID, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError("AddContribution", err)
	}
	return connect.NewResponse(&api.AddContributionResponse{Receipt: receipt}), nil
}

// GetSplitStatus returns the public view of a split.
func (s *SplitService) GetSplitStatus(ctx context.Context, req *connect.Request[api.GetSplitStatusRequest]) (*connect.Response[api.GetSplitStatusResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	status, err := s.store.SplitStatus(ctx, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("GetSplitStatus", err)
	}
	return connect.NewResponse(&api.GetSplitStatusResponse{Split: status}), nil
}

// GetParticipantView returns the caller's private view of a split.
func (s *SplitService) GetParticipantView(ctx context.Context, req *connect.Request[api.GetParticipantViewRequest]) (*connect.Response[api.GetParticipantViewResponse], error) {
	if err := callerFor(ctx, req.Msg.ParticipantID); err != nil {
		return nil, err
	}

	view, err := s.store.ParticipantView(ctx, req.Msg.ParticipantID, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("GetParticipantView", err)
	}
	return connect.NewResponse(&api.GetParticipantViewResponse{View: view}), nil
}

// VerifySplitIntegrity checks every contribution fingerprint of a split.
func (s *SplitService) VerifySplitIntegrity(ctx context.Context, req *connect.Request[api.VerifySplitIntegrityRequest]) (*connect.Response[api.VerifySplitIntegrityResponse], error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}

	report, err := s.store.VerifyIntegrity(ctx, req.Msg.SplitID)
	if err != nil {
		return nil, toConnectError("VerifySplitIntegrity", err)
	}
	return connect.NewResponse(&api.VerifySplitIntegrityResponse{Report: report}), nil
}

// ListParticipantSplits lists the caller's splits, newest first.
func (s *SplitService) ListParticipantSplits(ctx context.Context, req *connect.Request[api.ListParticipantSplitsRequest]) (*connect.Response[api.ListParticipantSplitsResponse], error) {
	if err := callerFor(ctx, req.Msg.ParticipantID); err != nil {
		return nil, err
	}

	splits, err := s.store.ParticipantSplits(ctx, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError("ListParticipantSplits", err)
	}
	return connect.NewResponse(&api.ListParticipantSplitsResponse{Splits: splits}), nil
}

// GetParticipant returns the caller's registry record.
func (s *SplitService) GetParticipant(ctx context.Context, req *connect.Request[api.GetParticipantRequest]) (*connect.Response[api.GetParticipantResponse], error) {
	if err := callerFor(ctx, req.Msg.ParticipantID); err != nil {
		return nil, err
	}

	p, err := s.store.Participant(ctx, req.Msg.ParticipantID)
	if err != nil {
		return nil, toConnectError("GetParticipant", err)
	}
	return connect.NewResponse(&api.GetParticipantResponse{Participant: p}), nil
}
