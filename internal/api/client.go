package api

import (
	"context"

	"connectrpc.com/connect"
)

// CommitmentServiceClient calls the commitment procedures.
type CommitmentServiceClient struct {
	createCommitment    *connect.Client[CreateCommitmentRequest, CreateCommitmentResponse]
	revealCommitment    *connect.Client[RevealCommitmentRequest, RevealCommitmentResponse]
	getCommitmentStatus *connect.Client[GetCommitmentStatusRequest, GetCommitmentStatusResponse]
	listCommitments     *connect.Client[ListCommitmentsRequest, ListCommitmentsResponse]
}

// NewCommitmentServiceClient constructs a client for the commitment service
// at baseURL. The JSON codec is always installed.
func NewCommitmentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CommitmentServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &CommitmentServiceClient{
		createCommitment:    connect.NewClient[CreateCommitmentRequest, CreateCommitmentResponse](httpClient, baseURL+CreateCommitmentProcedure, opts...),
		revealCommitment:    connect.NewClient[RevealCommitmentRequest, RevealCommitmentResponse](httpClient, baseURL+RevealCommitmentProcedure, opts...),
		getCommitmentStatus: connect.NewClient[GetCommitmentStatusRequest, GetCommitmentStatusResponse](httpClient, baseURL+GetCommitmentStatusProcedure, opts...),
		listCommitments:     connect.NewClient[ListCommitmentsRequest, ListCommitmentsResponse](httpClient, baseURL+ListCommitmentsProcedure, opts...),
	}
}

func (c *CommitmentServiceClient) CreateCommitment(ctx context.Context, req *connect.Request[CreateCommitmentRequest]) (*connect.Response[CreateCommitmentResponse], error) {
	return c.createCommitment.CallUnary(ctx, req)
}

func (c *CommitmentServiceClient) RevealCommitment(ctx context.Context, req *connect.Request[RevealCommitmentRequest]) (*connect.Response[RevealCommitmentResponse], error) {
	return c.revealCommitment.CallUnary(ctx, req)
}

func (c *CommitmentServiceClient) GetCommitmentStatus(ctx context.Context, req *connect.Request[GetCommitmentStatusRequest]) (*connect.Response[GetCommitmentStatusResponse], error) {
	return c.getCommitmentStatus.CallUnary(ctx, req)
}

func (c *CommitmentServiceClient) ListCommitments(ctx context.Context, req *connect.Request[ListCommitmentsRequest]) (*connect.Response[ListCommitmentsResponse], error) {
	return c.listCommitments.CallUnary(ctx, req)
}

// SplitServiceClient calls the split procedures.
type SplitServiceClient struct {
	createSplit           *connect.Client[CreateSplitRequest, CreateSplitResponse]
	addContribution       *connect.Client[AddContributionRequest, AddContributionResponse]
	getSplitStatus        *connect.Client[GetSplitStatusRequest, GetSplitStatusResponse]
	getParticipantView    *connect.Client[GetParticipantViewRequest, GetParticipantViewResponse]
	verifySplitIntegrity  *connect.Client[VerifySplitIntegrityRequest, VerifySplitIntegrityResponse]
	listParticipantSplits *connect.Client[ListParticipantSplitsRequest, ListParticipantSplitsResponse]
	getParticipant        *connect.Client[GetParticipantRequest, GetParticipantResponse]
}

// NewSplitServiceClient constructs a client for the split service at baseURL.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SplitServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &SplitServiceClient{
		createSplit:           connect.NewClient[CreateSplitRequest, CreateSplitResponse](httpClient, baseURL+CreateSplitProcedure, opts...),
		addContribution:       connect.NewClient[AddContributionRequest, AddContributionResponse](httpClient, baseURL+AddContributionProcedure, opts...),
		getSplitStatus:        connect.NewClient[GetSplitStatusRequest, GetSplitStatusResponse](httpClient, baseURL+GetSplitStatusProcedure, opts...),
		getParticipantView:    connect.NewClient[GetParticipantViewRequest, GetParticipantViewResponse](httpClient, baseURL+GetParticipantViewProcedure, opts...),
		verifySplitIntegrity:  connect.NewClient[VerifySplitIntegrityRequest, VerifySplitIntegrityResponse](httpClient, baseURL+VerifySplitIntegrityProcedure, opts...),
		listParticipantSplits: connect.NewClient[ListParticipantSplitsRequest, ListParticipantSplitsResponse](httpClient, baseURL+ListParticipantSplitsProcedure, opts...),
		getParticipant:        connect.NewClient[GetParticipantRequest, GetParticipantResponse](httpClient, baseURL+GetParticipantProcedure, opts...),
	}
}

func (c *SplitServiceClient) CreateSplit(ctx context.Context, req *connect.Request[CreateSplitRequest]) (*connect.Response[CreateSplitResponse], error) {
	return c.createSplit.CallUnary(ctx, req)
}

func (c *SplitServiceClient) AddContribution(ctx context.Context, req *connect.Request[AddContributionRequest]) (*connect.Response[AddContributionResponse], error) {
	return c.addContribution.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetSplitStatus(ctx context.Context, req *connect.Request[GetSplitStatusRequest]) (*connect.Response[GetSplitStatusResponse], error) {
	return c.getSplitStatus.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetParticipantView(ctx context.Context, req *connect.Request[GetParticipantViewRequest]) (*connect.Response[GetParticipantViewResponse], error) {
	return c.getParticipantView.CallUnary(ctx, req)
}

func (c *SplitServiceClient) VerifySplitIntegrity(ctx context.Context, req *connect.Request[VerifySplitIntegrityRequest]) (*connect.Response[VerifySplitIntegrityResponse], error) {
	return c.verifySplitIntegrity.CallUnary(ctx, req)
}

func (c *SplitServiceClient) ListParticipantSplits(ctx context.Context, req *connect.Request[ListParticipantSplitsRequest]) (*connect.Response[ListParticipantSplitsResponse], error) {
	return c.listParticipantSplits.CallUnary(ctx, req)
}

func (c *SplitServiceClient) GetParticipant(ctx context.Context, req *connect.Request[GetParticipantRequest]) (*connect.Response[GetParticipantResponse], error) {
	return c.getParticipant.CallUnary(ctx, req)
}
