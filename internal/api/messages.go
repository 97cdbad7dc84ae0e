// Package api defines the wire messages and procedure names of the pledge
// Connect services, and typed clients for them.
package api

import "github.com/mmynk/pledge/internal/models"

const (
	CommitmentServiceName = "pledge.v1.CommitmentService"
	SplitServiceName      = "pledge.v1.SplitService"
)

// Procedure paths.
const (
	CreateCommitmentProcedure    = "/" + CommitmentServiceName + "/CreateCommitment"
	RevealCommitmentProcedure    = "/" + CommitmentServiceName + "/RevealCommitment"
	GetCommitmentStatusProcedure = "/" + CommitmentServiceName + "/GetCommitmentStatus"
	ListCommitmentsProcedure     = "/" + CommitmentServiceName + "/ListCommitments"

	CreateSplitProcedure           = "/" + SplitServiceName + "/CreateSplit"
	AddContributionProcedure       = "/" + SplitServiceName + "/AddContribution"
	GetSplitStatusProcedure        = "/" + SplitServiceName + "/GetSplitStatus"
	GetParticipantViewProcedure    = "/" + SplitServiceName + "/GetParticipantView"
	VerifySplitIntegrityProcedure  = "/" + SplitServiceName + "/VerifySplitIntegrity"
	ListParticipantSplitsProcedure = "/" + SplitServiceName + "/ListParticipantSplits"
	GetParticipantProcedure        = "/" + SplitServiceName + "/GetParticipant"
)

type CreateCommitmentRequest struct {
	Text string `json:"text"`
	// Deadline is a Unix millisecond timestamp.
	Deadline int64 `json:"deadline"`
	// Stake defaults to the server's default stake when omitted.
	Stake *int64 `json:"stake,omitempty"`
}

type CreateCommitmentResponse struct {
	CommitmentID string `json:"commitmentId"`
}

type RevealCommitmentRequest struct {
	CommitmentID string `json:"commitmentId"`
}

type RevealCommitmentResponse struct {
	CommitmentID string `json:"commitmentId"`
	Text         string `json:"text"`
	Deadline     int64  `json:"deadline"`
	Stake        int64  `json:"stake"`
	Fingerprint  string `json:"fingerprint"`
	RevealedAt   int64  `json:"revealedAt"`
}

type GetCommitmentStatusRequest struct {
	CommitmentID string `json:"commitmentId"`
}

type GetCommitmentStatusResponse struct {
	Commitment *models.CommitmentStatus `json:"commitment"`
}

type ListCommitmentsRequest struct{}

type ListCommitmentsResponse struct {
	Commitments []*models.CommitmentStatus `json:"commitments"`
}

type CreateSplitRequest struct {
	Description    string   `json:"description"`
	TotalAmount    int64    `json:"totalAmount"`
	ParticipantIDs []string `json:"participantIds"`
	// SplitType is "equal" (default) or "custom".
	SplitType     string           `json:"splitType,omitempty"`
	CustomAmounts map[string]int64 `json:"customAmounts,omitempty"`
}

type CreateSplitResponse struct {
	SplitID string `json:"splitId"`
}

type AddContributionRequest struct {
	SplitID       string `json:"splitId"`
	ParticipantID string `json:"participantId"`
	Amount        int64  `json:"amount"`
}

type AddContributionResponse struct {
	Receipt *models.Receipt `json:"receipt"`
}

type GetSplitStatusRequest struct {
	SplitID string `json:"splitId"`
}

type GetSplitStatusResponse struct {
	Split *models.SplitStatus `json:"split"`
}

type GetParticipantViewRequest struct {
	SplitID       string `json:"splitId"`
	ParticipantID string `json:"participantId"`
}

type GetParticipantViewResponse struct {
	View *models.ParticipantView `json:"view"`
}

type VerifySplitIntegrityRequest struct {
	SplitID string `json:"splitId"`
}

type VerifySplitIntegrityResponse struct {
	Report *models.IntegrityReport `json:"report"`
}

type ListParticipantSplitsRequest struct {
	ParticipantID string `json:"participantId"`
}

type ListParticipantSplitsResponse struct {
	Splits []*models.SplitSummary `json:"splits"`
}

type GetParticipantRequest struct {
	ParticipantID string `json:"participantId"`
}

type GetParticipantResponse struct {
	Participant *models.Participant `json:"participant"`
}
