package notification

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"request-approval-backend/internal/model"
	"request-approval-backend/internal/push"
	"request-approval-backend/internal/store"
)

// Skip reasons reported in a BroadcastOutcome.
const (
	ReasonDatabaseError = "database-error"
	ReasonNoTokens      = "no-tokens"
	ReasonNoValidTokens = "no-valid-tokens"
)

// Texts of the new-request alert shown on admin devices.
const (
	broadcastTitle = "신청 알림"
	broadcastBody  = "신청이 들어왔습니다"
)

// SendFailure records one failed delivery within a broadcast.
type SendFailure struct {
	Token string
	Err   error
}

// BroadcastOutcome summarizes one broadcast for logs and tests.
// It is never persisted.
type BroadcastOutcome struct {
	Skipped        bool
	Reason         string
	Sent           int
	Failures       []SendFailure
	RemovedInvalid int
}

// Notifier sends push notifications for the request-approval flow.
type Notifier struct {
	store   store.Store
	gateway push.Gateway
	timeout time.Duration
}

// NewNotifier creates a Notifier. timeout bounds each individual
// gateway call so one hung device cannot stall a whole broadcast.
func NewNotifier(s store.Store, gw push.Gateway, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{store: s, gateway: gw, timeout: timeout}
}

// tokenEntry pairs a deduplicated token string with its registry row.
type tokenEntry struct {
	token  string
	record model.AdminToken
}

// BroadcastNewRequestAlert notifies every currently valid admin device
// that a new request arrived. It never returns an error: a storage
// fault on the initial token fetch becomes a skipped outcome, and
// per-token failures are folded into the aggregate, so notification
// trouble can never fail the request-creation flow that triggered it.
func (n *Notifier) BroadcastNewRequestAlert(ctx context.Context, req *model.Request) BroadcastOutcome {
	records, err := n.store.ListAdminTokens(ctx)
	if err != nil {
		log.Printf("broadcast: failed to fetch admin tokens: %v", err)
		return BroadcastOutcome{Skipped: true, Reason: ReasonDatabaseError}
	}

	// Dedupe by trimmed token value, first occurrence wins.
	seen := make(map[string]bool, len(records))
	var entries []tokenEntry
	for _, rec := range records {
		token := strings.TrimSpace(rec.Token)
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		entries = append(entries, tokenEntry{token: token, record: rec})
	}

	if len(entries) == 0 {
		return BroadcastOutcome{Skipped: true, Reason: ReasonNoTokens}
	}

	validity := n.validateAll(ctx, entries)

	var valid, invalid []tokenEntry
	for i, entry := range entries {
		if validity[i] {
			valid = append(valid, entry)
		} else {
			invalid = append(invalid, entry)
		}
	}

	n.pruneAll(ctx, invalid)

	if len(valid) == 0 {
		return BroadcastOutcome{
			Skipped:        true,
			Reason:         ReasonNoValidTokens,
			RemovedInvalid: len(invalid),
		}
	}

	msg := push.Message{
		Notification: push.Notification{Title: broadcastTitle, Body: broadcastBody},
		Data:         map[string]string{"requestId": strconv.FormatInt(req.ID, 10)},
	}
	failures, pruned := n.sendAll(ctx, valid, msg)

	return BroadcastOutcome{
		Sent:           len(valid) - len(failures),
		Failures:       failures,
		RemovedInvalid: len(invalid) + pruned,
	}
}

// validateAll checks every token concurrently and returns a validity
// slice parallel to entries. Gateway trouble other than the clean
// "unregistered" signal is logged but still counts as invalid for this
// broadcast; it never aborts the call.
func (n *Notifier) validateAll(ctx context.Context, entries []tokenEntry) []bool {
	validity := make([]bool, len(entries))
	var wg sync.WaitGroup
	for i := range entries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, n.timeout)
			defer cancel()

			valid, err := n.gateway.CheckValidity(callCtx, entries[i].token)
			if err != nil {
				log.Printf("broadcast: validity check failed for token %s: %v", abbreviate(entries[i].token), err)
			}
			validity[i] = valid
		}(i)
	}
	wg.Wait()
	return validity
}

// pruneAll deletes the given registry rows concurrently, best-effort.
// One failed delete never blocks the others or the broadcast.
func (n *Notifier) pruneAll(ctx context.Context, entries []tokenEntry) {
	if len(entries) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(entry tokenEntry) {
			defer wg.Done()
			if err := n.store.DeleteAdminToken(ctx, entry.record.ID); err != nil {
				log.Printf("broadcast: failed to prune token %s: %v", abbreviate(entry.token), err)
			}
		}(entry)
	}
	wg.Wait()
}

// sendAll delivers msg to every entry concurrently and joins all
// results regardless of individual failures. Tokens whose failure is
// the permanent unregistered signal are pruned; pruned is how many
// such deletions were issued.
func (n *Notifier) sendAll(ctx context.Context, entries []tokenEntry, msg push.Message) (failures []SendFailure, pruned int) {
	errs := make([]error, len(entries))
	var wg sync.WaitGroup
	for i := range entries {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, n.timeout)
			defer cancel()

			m := msg
			m.Token = entries[i].token
			_, errs[i] = n.gateway.Send(callCtx, m)
		}(i)
	}
	wg.Wait()

	var dead []tokenEntry
	for i, err := range errs {
		if err == nil {
			continue
		}
		failures = append(failures, SendFailure{Token: entries[i].token, Err: err})
		if push.IsUnregistered(err) {
			dead = append(dead, entries[i])
		} else {
			log.Printf("broadcast: send failed for token %s: %v", abbreviate(entries[i].token), err)
		}
	}

	n.pruneAll(ctx, dead)
	return failures, len(dead)
}

// abbreviate shortens a token for log lines.
func abbreviate(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
