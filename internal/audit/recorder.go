package audit

import (
	"context"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/crucial707/vigil/internal/metrics"
	"github.com/crucial707/vigil/internal/models"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Store appends audit entries.
type Store interface {
	Insert(ctx context.Context, e models.AuditEntry) error
}

// Recorder writes one audit entry per mutating action. Writes are best-effort:
// a failed write is logged and counted but never reported to the caller.
type Recorder struct {
	store Store
	log   *zap.Logger
	now   func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewRecorder returns a Recorder over store. log may be nil.
func NewRecorder(store Store, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		store:   store,
		log:     log,
		now:     time.Now,
		entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (r *Recorder) newID(at time.Time) string {
	r.entropyMu.Lock()
	defer r.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), r.entropy).String()
}

// Record appends an entry attributed to actor. A nil Recorder records nothing.
func (r *Recorder) Record(ctx context.Context, actor *models.User, action, resource, details, ip string) {
	if r == nil || actor == nil {
		return
	}
	at := r.now().UTC()
	e := models.AuditEntry{
		ID:        r.newID(at),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: ip,
		CreatedAt: at,
	}
	if err := r.store.Insert(ctx, e); err != nil {
		metrics.IncAuditWriteFailures()
		r.log.Warn("audit write failed",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("user_id", actor.ID),
			zap.Error(err))
	}
}
