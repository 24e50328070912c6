package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/access"
	"github.com/dmitrijs2005/gophshare/internal/client/config"
	"github.com/dmitrijs2005/gophshare/internal/client/models"
	"github.com/dmitrijs2005/gophshare/internal/logging"
)

type fakeAuth struct {
	mu sync.Mutex

	sess      access.Session
	loginErr  error
	resumeErr error
	pingErr   error
	loggedOut bool
	closed    bool
	pings     int
}

func (f *fakeAuth) Register(_ context.Context, email, first, last, _ string) (*models.User, error) {
	return &models.User{ID: 9, Email: email, FirstName: first, LastName: last}, nil
}

func (f *fakeAuth) Login(context.Context, string, string) (access.Session, error) {
	return f.sess, f.loginErr
}

func (f *fakeAuth) Resume(context.Context) (access.Session, error) {
	if f.resumeErr != nil {
		return access.Session{}, f.resumeErr
	}
	return f.sess, nil
}

func (f *fakeAuth) Logout(context.Context) error { f.loggedOut = true; return nil }
func (f *fakeAuth) Close(context.Context) error  { f.closed = true; return nil }

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

type fakeFiles struct {
	owned     []access.File
	public    []access.File
	uploaded  []string
	deleted   []int64
	qc        *models.QuickCheck
	history   []*models.Transfer
	recovered int
}

func (f *fakeFiles) Upload(_ context.Context, path string, public bool, _ string) (*access.File, error) {
	f.uploaded = append(f.uploaded, path)
	return &access.File{ID: 50, Name: "a.txt", Size: 2048, Public: public}, nil
}

func (f *fakeFiles) Download(_ context.Context, id int64) (string, error) {
	return "/downloads/file.pdf", nil
}

func (f *fakeFiles) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeFiles) ListOwned(context.Context, access.Session) ([]access.File, error) {
	return f.owned, nil
}

func (f *fakeFiles) ListPublic(context.Context, access.Session) ([]access.File, error) {
	return f.public, nil
}

func (f *fakeFiles) QuickCheck(context.Context, int64) (*models.QuickCheck, error) {
	return f.qc, nil
}

func (f *fakeFiles) History(context.Context, int) ([]*models.Transfer, error) {
	return f.history, nil
}

func (f *fakeFiles) RecoverInterrupted(context.Context) (int, error) {
	return f.recovered, nil
}

// fakeBackend is an in-memory request directory and file catalog using the
// same transition checks as the server.
type fakeBackend struct {
	files    []access.File
	requests []access.AccessRequest
	nextID   int64
	users    map[int64]access.UserRef
	failList bool
}

func (b *fakeBackend) file(id int64) (access.File, bool) {
	for _, f := range b.files {
		if f.ID == id {
			return f, true
		}
	}
	return access.File{}, false
}

func (b *fakeBackend) find(id int64) (int, bool) {
	for i, r := range b.requests {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (b *fakeBackend) CreateRequest(_ context.Context, sess access.Session, fileID int64, msg string) (*access.AccessRequest, error) {
	f, ok := b.file(fileID)
	if !ok {
		return nil, access.Errorf(access.NotFound, "file %d not found", fileID)
	}
	var existing *access.AccessRequest
	idx := -1
	for i := range b.requests {
		if b.requests[i].File.ID == fileID && b.requests[i].Requester.ID == sess.UserID {
			existing, idx = &b.requests[i], i
		}
	}
	reopen, err := access.CheckSubmit(f, sess.UserID, existing, access.DefaultPolicy())
	if err != nil {
		return nil, err
	}
	if reopen {
		b.requests[idx].Status = access.StatusPending
		b.requests[idx].Message = msg
		b.requests[idx].RespondedAt = nil
		out := b.requests[idx]
		return &out, nil
	}
	b.nextID++
	r := access.AccessRequest{
		ID:          b.nextID,
		Requester:   b.users[sess.UserID],
		Owner:       f.Owner,
		File:        access.FileRef{ID: f.ID, Name: f.Name},
		Status:      access.StatusPending,
		Message:     msg,
		RequestedAt: time.Now(),
	}
	b.requests = append(b.requests, r)
	return &r, nil
}

func (b *fakeBackend) ListReceived(_ context.Context, sess access.Session) ([]access.AccessRequest, error) {
	var out []access.AccessRequest
	for _, r := range b.requests {
		if r.Owner.ID == sess.UserID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *fakeBackend) ListSent(_ context.Context, sess access.Session) ([]access.AccessRequest, error) {
	if b.failList {
		return nil, access.Errorf(access.Unavailable, "down")
	}
	var out []access.AccessRequest
	for _, r := range b.requests {
		if r.Requester.ID == sess.UserID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *fakeBackend) SetStatus(_ context.Context, sess access.Session, id int64, st access.RequestStatus) (*access.AccessRequest, error) {
	i, ok := b.find(id)
	if !ok {
		return nil, access.Errorf(access.NotFound, "request %d not found", id)
	}
	if err := access.CheckResolve(b.requests[i], sess.UserID, st); err != nil {
		return nil, err
	}
	now := time.Now()
	b.requests[i].Status = st
	b.requests[i].RespondedAt = &now
	out := b.requests[i]
	return &out, nil
}

func (b *fakeBackend) DeleteRequest(_ context.Context, sess access.Session, id int64) error {
	i, ok := b.find(id)
	if !ok {
		return access.Errorf(access.NotFound, "request %d not found", id)
	}
	if err := access.CheckWithdraw(b.requests[i], sess.UserID); err != nil {
		return err
	}
	b.requests = append(b.requests[:i], b.requests[i+1:]...)
	return nil
}

func (b *fakeBackend) ListOwned(context.Context, access.Session) ([]access.File, error) {
	return nil, nil
}

func (b *fakeBackend) ListPublic(context.Context, access.Session) ([]access.File, error) {
	return nil, nil
}

func (b *fakeBackend) ListOthersPrivate(_ context.Context, sess access.Session) ([]access.FileView, error) {
	var private []access.File
	for _, f := range b.files {
		if !f.Public && f.Owner.ID != sess.UserID {
			private = append(private, f)
		}
	}
	sent, _ := b.ListSent(context.Background(), sess)
	return access.DeriveAll(private, sess.UserID, access.IndexByFile(sent, sess.UserID), access.DefaultPolicy()), nil
}

var (
	ann = access.UserRef{ID: 1, Email: "ann@example.com", FirstName: "Ann"}
	bob = access.UserRef{ID: 2, Email: "bob@example.com", FirstName: "Bob"}
)

func newBackend() *fakeBackend {
	return &fakeBackend{
		users: map[int64]access.UserRef{1: ann, 2: bob},
		files: []access.File{
			{ID: 7, Name: "plan.pdf", Type: "application/pdf", Size: 1536, Owner: ann},
			{ID: 8, Name: "notes.txt", Type: "text/plain", Size: 10, Owner: ann, Public: true},
		},
	}
}

type testApp struct {
	*App
	auth    *fakeAuth
	files   *fakeFiles
	backend *fakeBackend
	out     *bytes.Buffer
}

// newTestApp builds an App logged in as sess that reads input from lines.
func newTestApp(sess access.Session, backend *fakeBackend, lines ...string) *testApp {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.OnlineCheckInterval = time.Hour

	auth := &fakeAuth{sess: sess}
	files := &fakeFiles{}
	wf := access.NewWorkflow(backend, backend, access.DefaultPolicy(), logging.Nop())
	out := &bytes.Buffer{}

	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	a := newApp(cfg, auth, files, wf, logging.Nop(), in, out)
	a.setSession(sess)
	return &testApp{App: a, auth: auth, files: files, backend: backend, out: out}
}
