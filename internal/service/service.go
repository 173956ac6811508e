// Package service implements the promotion workflow: recording promotion
// requests, approving them (which moves the artifact one stage forward), and
// answering aggregated log queries.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/artifactops/promotion-service/internal/blobstore"
	"github.com/artifactops/promotion-service/internal/models"
	"github.com/artifactops/promotion-service/internal/notify"
	"github.com/artifactops/promotion-service/internal/promolog"
	"github.com/artifactops/promotion-service/internal/userconfig"
)

// ValidationError reports a malformed request. The HTTP layer maps it to a
// 400 response; it is always raised before any side effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type Service struct {
	logs     *promolog.Store
	blobs    blobstore.Store
	users    *userconfig.Lookup
	notifier notify.Notifier
	now      func() time.Time
}

func New(logs *promolog.Store, blobs blobstore.Store, users *userconfig.Lookup, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Service{
		logs:     logs,
		blobs:    blobs,
		users:    users,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source; tests use it for deterministic
// record ordering.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// timestampLayout pads fractional seconds to a fixed nine digits.
// Aggregated log queries order records by comparing timestamps as text, so
// the format must be fixed-width; RFC3339Nano trims trailing zeros and makes
// same-second fractions sort by prefix instead of by time.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *Service) timestamp() string {
	return s.now().Format(timestampLayout)
}

type PromotionRequest struct {
	User    string
	Model   string
	Version string
	Note    string
}

// RequestPromotion records intent to move (model, version) from develop to
// qa. It appends exactly one PENDING_APPROVAL record to the develop log and
// notifies the requester's channels. No artifacts move here; a request only
// ever targets develop -> qa.
func (s *Service) RequestPromotion(ctx context.Context, req PromotionRequest) (models.TransitionRecord, error) {
	if req.User == "" {
		return models.TransitionRecord{}, validationErrorf("missing 'user' in request")
	}
	if req.Model == "" {
		return models.TransitionRecord{}, validationErrorf("missing 'model' in request")
	}
	version := req.Version
	if version == "" {
		version = "1"
	}

	// Config lookup precedes any mutation so a missing config aborts with
	// zero side effects.
	cfg, err := s.users.Get(ctx, req.User)
	if err != nil {
		return models.TransitionRecord{}, err
	}

	entry := models.TransitionRecord{
		Timestamp:   s.timestamp(),
		Model:       req.Model,
		Version:     version,
		FromEnv:     models.EnvDevelop,
		ToEnv:       models.EnvQA,
		Status:      models.StatusPendingApproval,
		Note:        req.Note,
		RequestedBy: req.User,
	}
	if err := s.logs.Append(ctx, models.EnvDevelop, req.Model, version, entry); err != nil {
		return models.TransitionRecord{}, err
	}

	msg := fmt.Sprintf(":rocket: Promotion requested for *%s* v%s (Dev → QA) by *%s*.", req.Model, version, req.User)
	subject := fmt.Sprintf("Promotion requested: %s v%s", req.Model, version)
	s.bestEffortNotify(ctx, cfg, subject, msg)

	return entry, nil
}

type ApprovalRequest struct {
	User      string
	Model     string
	Version   string
	ToEnv     string
	Requester string
}

// ApprovePromotion moves (model, version) one stage forward: it copies every
// artifact object from the source bucket to the target bucket, appends an
// APPROVED record to the target log, and mirrors an APPROVAL_RECORDED record
// back to the source log.
//
// Approval is honored regardless of whether a matching PENDING_APPROVAL
// exists; the workflow records decisions, it does not gate them on prior
// state. Artifact copy failures abort before any log write, so the logs only
// ever describe completed transfers. A storage failure between the two log
// writes leaves artifacts copied with logs partially updated; there is no
// compensating rollback.
func (s *Service) ApprovePromotion(ctx context.Context, req ApprovalRequest) (models.TransitionRecord, error) {
	if req.User == "" {
		return models.TransitionRecord{}, validationErrorf("missing 'user' in request")
	}
	if req.Model == "" {
		return models.TransitionRecord{}, validationErrorf("missing 'model' in request")
	}
	version := req.Version
	if version == "" {
		version = "1"
	}
	toEnvName := strings.ToLower(req.ToEnv)
	if toEnvName == "" {
		toEnvName = string(models.EnvQA)
	}
	targetEnv := models.Environment(toEnvName)
	sourceEnv, ok := models.SourceFor(targetEnv)
	if !ok {
		return models.TransitionRecord{}, validationErrorf("to_env must be 'qa' or 'prod'")
	}

	// Notification routing uses the original requester's config when the
	// approver passes it along; otherwise the approver's own.
	requester := req.Requester
	if requester == "" {
		requester = req.User
	}
	cfg, err := s.users.Get(ctx, requester)
	if err != nil {
		return models.TransitionRecord{}, err
	}

	sourceBucket, err := s.logs.Bucket(sourceEnv)
	if err != nil {
		return models.TransitionRecord{}, err
	}
	targetBucket, err := s.logs.Bucket(targetEnv)
	if err != nil {
		return models.TransitionRecord{}, err
	}

	// Copy must succeed before any log is written; a failed copy aborts the
	// call with the target possibly partially populated.
	prefix := promolog.ArtifactPrefix(req.Model, version)
	if err := s.blobs.CopyPrefix(ctx, sourceBucket, targetBucket, prefix); err != nil {
		return models.TransitionRecord{}, fmt.Errorf("copy artifacts %s -> %s: %w", sourceEnv, targetEnv, err)
	}

	// The source log is authoritative for the merge base: it carries the
	// full history up to this hop, while the target may hold a stale copy
	// from an earlier transfer. Only when the source has no log does the
	// target's existing content survive.
	srcLogs, err := s.logs.Read(ctx, sourceEnv, req.Model, version)
	if err != nil {
		return models.TransitionRecord{}, err
	}
	tgtLogs, err := s.logs.Read(ctx, targetEnv, req.Model, version)
	if err != nil {
		return models.TransitionRecord{}, err
	}
	combined := srcLogs
	if len(combined) == 0 {
		combined = tgtLogs
	}

	approval := models.TransitionRecord{
		Timestamp:  s.timestamp(),
		Model:      req.Model,
		Version:    version,
		FromEnv:    sourceEnv,
		ToEnv:      targetEnv,
		Status:     models.StatusApproved,
		ApprovedBy: req.User,
	}
	if err := s.logs.Replace(ctx, targetEnv, req.Model, version, append(combined, approval)); err != nil {
		return models.TransitionRecord{}, err
	}

	// Fresh read rather than reusing srcLogs: the mirror append must build
	// on whatever the source log holds now.
	if err := s.logs.Append(ctx, sourceEnv, req.Model, version, models.TransitionRecord{
		Timestamp:  s.timestamp(),
		Model:      req.Model,
		Version:    version,
		FromEnv:    sourceEnv,
		ToEnv:      targetEnv,
		Status:     models.StatusApprovalRecorded,
		ApprovedBy: req.User,
	}); err != nil {
		return models.TransitionRecord{}, fmt.Errorf("record approval at source: %w", err)
	}

	msg := fmt.Sprintf(":white_check_mark: *Approved* → *%s* v%s promoted to *%s* by *%s*.",
		req.Model, version, strings.ToUpper(toEnvName), req.User)
	subject := fmt.Sprintf("Promotion approved: %s v%s → %s", req.Model, version, strings.ToUpper(toEnvName))
	s.bestEffortNotify(ctx, cfg, subject, msg)

	return approval, nil
}

// GetLogs returns the union of every environment's records for (model,
// version), sorted by timestamp ascending. Unknown artifacts yield an empty
// slice.
func (s *Service) GetLogs(ctx context.Context, model, version string) ([]models.TransitionRecord, error) {
	if model == "" {
		return nil, validationErrorf("missing 'model' in request")
	}
	if version == "" {
		version = "1"
	}
	return s.logs.ReadAll(ctx, model, version)
}

// bestEffortNotify fans the message out to the chat and broadcast channels.
// Failures are logged and swallowed; notifications never affect the outcome
// of the workflow call that produced them.
func (s *Service) bestEffortNotify(ctx context.Context, cfg models.UserConfig, subject, message string) {
	if err := s.notifier.Chat(ctx, cfg.SlackWebhookURL, message); err != nil {
		log.Printf("notify: chat failed: %v", err)
	}
	if err := s.notifier.Broadcast(ctx, subject, message); err != nil {
		log.Printf("notify: broadcast failed: %v", err)
	}
}
