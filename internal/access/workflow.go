package access

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/logging"
)

// RequestDirectory persists access requests. The server implements it on top
// of the database; the client implements it over HTTP.
type RequestDirectory interface {
	CreateRequest(ctx context.Context, sess Session, fileID int64, message string) (*AccessRequest, error)
	ListReceived(ctx context.Context, sess Session) ([]AccessRequest, error)
	ListSent(ctx context.Context, sess Session) ([]AccessRequest, error)
	SetStatus(ctx context.Context, sess Session, requestID int64, status RequestStatus) (*AccessRequest, error)
	DeleteRequest(ctx context.Context, sess Session, requestID int64) error
}

// FileCatalog lists files. ListOthersPrivate returns server-computed views.
type FileCatalog interface {
	ListOwned(ctx context.Context, sess Session) ([]File, error)
	ListPublic(ctx context.Context, sess Session) ([]File, error)
	ListOthersPrivate(ctx context.Context, sess Session) ([]FileView, error)
}

// Mismatch records a field where the server's view differs from Derive.
type Mismatch struct {
	FileID int64
	Field  string
	Server any
	Local  any
}

// Workflow runs access request commands for a session and keeps a Store in
// sync with the server. Every mutation is followed by a full re-fetch; the
// store never shows a state the server has not confirmed.
type Workflow struct {
	dir     RequestDirectory
	catalog FileCatalog
	policy  Policy
	store   *Store
	log     logging.Logger
	now     func() time.Time
}

func NewWorkflow(dir RequestDirectory, catalog FileCatalog, policy Policy, log logging.Logger) *Workflow {
	if log == nil {
		log = logging.Nop()
	}
	return &Workflow{
		dir:     dir,
		catalog: catalog,
		policy:  policy,
		store:   NewStore(),
		log:     log.With("component", "access_workflow"),
		now:     time.Now,
	}
}

func (w *Workflow) Store() *Store { return w.store }

func (w *Workflow) Policy() Policy { return w.policy }

// Submit asks for access to fileID on behalf of sess.
func (w *Workflow) Submit(ctx context.Context, sess Session, fileID int64, message string) (*AccessRequest, error) {
	if !sess.Valid() {
		return nil, Errorf(Unauthenticated, "no session")
	}

	req, err := w.dir.CreateRequest(ctx, sess, fileID, message)
	if err != nil {
		return nil, Wrap(err, "submit request")
	}

	w.log.Info(ctx, "access request submitted", "request_id", req.ID, "file_id", fileID)
	w.refreshAfterMutation(ctx, sess)
	return req, nil
}

// Resolve answers requestID with decision. A request already present in the
// last snapshot is checked locally first and refused without contacting the
// directory when the viewer is not its owner or it is no longer pending.
//
// The snapshot can lag behind the directory: a request rejected here and
// then re-submitted from another session stays REJECTED locally, and Resolve
// reports Conflict until Refresh is called.
func (w *Workflow) Resolve(ctx context.Context, sess Session, requestID int64, decision RequestStatus) (*AccessRequest, error) {
	if !sess.Valid() {
		return nil, Errorf(Unauthenticated, "no session")
	}
	if decision != StatusApproved && decision != StatusRejected {
		return nil, Errorf(Invalid, "invalid decision %q", decision)
	}

	if known, ok := w.known(sess, requestID); ok {
		if err := CheckResolve(known, sess.UserID, decision); err != nil {
			return nil, asOfSnapshot(err)
		}
	}

	req, err := w.dir.SetStatus(ctx, sess, requestID, decision)
	if err != nil {
		return nil, Wrap(err, "resolve request")
	}

	w.log.Info(ctx, "access request resolved", "request_id", requestID, "status", req.Status)
	w.refreshAfterMutation(ctx, sess)
	return req, nil
}

// Withdraw deletes the viewer's own pending request. Like Resolve it trusts
// the last snapshot for requests it already knows.
func (w *Workflow) Withdraw(ctx context.Context, sess Session, requestID int64) error {
	if !sess.Valid() {
		return Errorf(Unauthenticated, "no session")
	}

	if known, ok := w.known(sess, requestID); ok {
		if err := CheckWithdraw(known, sess.UserID); err != nil {
			return asOfSnapshot(err)
		}
	}

	if err := w.dir.DeleteRequest(ctx, sess, requestID); err != nil {
		return Wrap(err, "withdraw request")
	}

	w.log.Info(ctx, "access request withdrawn", "request_id", requestID)
	w.refreshAfterMutation(ctx, sess)
	return nil
}

// Refresh re-reads both request lists and the others-private file list and
// publishes the result.
func (w *Workflow) Refresh(ctx context.Context, sess Session) (Snapshot, error) {
	if !sess.Valid() {
		return Snapshot{}, Errorf(Unauthenticated, "no session")
	}

	sent, err := w.dir.ListSent(ctx, sess)
	if err != nil {
		return Snapshot{}, Wrap(err, "list sent requests")
	}
	received, err := w.dir.ListReceived(ctx, sess)
	if err != nil {
		return Snapshot{}, Wrap(err, "list received requests")
	}
	serverViews, err := w.catalog.ListOthersPrivate(ctx, sess)
	if err != nil {
		return Snapshot{}, Wrap(err, "list private files")
	}

	views, mismatches := w.reconcile(sess, serverViews, sent)
	for _, m := range mismatches {
		w.log.Warn(ctx, "server view differs from local derivation",
			"file_id", m.FileID, "field", m.Field, "server", m.Server, "local", m.Local)
	}

	snap := Snapshot{
		Session:    sess,
		Sent:       sent,
		Received:   received,
		Views:      views,
		Mismatches: mismatches,
		FetchedAt:  w.now(),
	}
	snap.Stats = ComputeStats(sent, received, views)

	return w.store.Publish(snap), nil
}

// reconcile keeps the server's flags and reports where Derive disagrees.
func (w *Workflow) reconcile(sess Session, server []FileView, sent []AccessRequest) ([]FileView, []Mismatch) {
	idx := IndexByFile(sent, sess.UserID)
	views := make([]FileView, 0, len(server))
	var mismatches []Mismatch

	for _, sv := range server {
		if sv.RequestStatus == "" {
			sv.RequestStatus = NoRequest
		}
		local := Derive(sv.File, sess.UserID, idx, w.policy)

		if sv.RequestStatus != local.RequestStatus {
			mismatches = append(mismatches, Mismatch{FileID: sv.ID, Field: "requestStatus", Server: sv.RequestStatus, Local: local.RequestStatus})
		}
		if sv.HasAccess != local.HasAccess {
			mismatches = append(mismatches, Mismatch{FileID: sv.ID, Field: "hasAccess", Server: sv.HasAccess, Local: local.HasAccess})
		}
		if sv.CanRequest != local.CanRequest {
			mismatches = append(mismatches, Mismatch{FileID: sv.ID, Field: "canRequest", Server: sv.CanRequest, Local: local.CanRequest})
		}

		sv.IsOwner = local.IsOwner
		if sv.RequestID == 0 {
			sv.RequestID = local.RequestID
		}
		views = append(views, sv)
	}
	return views, mismatches
}

func (w *Workflow) known(sess Session, requestID int64) (AccessRequest, bool) {
	snap := w.store.Snapshot()
	if snap.Session.UserID != sess.UserID {
		return AccessRequest{}, false
	}
	return snap.FindRequest(requestID)
}

// asOfSnapshot marks a state conflict found in the local snapshot, which may
// be older than the directory.
func asOfSnapshot(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind == Conflict {
		return &Error{Kind: Conflict, Msg: e.Msg + " as of the last refresh"}
	}
	return err
}

func (w *Workflow) refreshAfterMutation(ctx context.Context, sess Session) {
	if _, err := w.Refresh(ctx, sess); err != nil {
		w.log.Warn(ctx, "refresh after mutation failed", "error", err)
		snap := w.store.Snapshot()
		snap.Stale = true
		w.store.Publish(snap)
	}
}
