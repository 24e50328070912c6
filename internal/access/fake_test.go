package access

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophshare/internal/common"
)

// fakeServer is an in-memory RequestDirectory and FileCatalog that applies
// the same transition checks as the real backend.
type fakeServer struct {
	mu       sync.Mutex
	policy   Policy
	users    map[int64]UserRef
	files    map[int64]File
	requests map[int64]*AccessRequest
	nextID   int64
	clock    time.Time

	calls map[string]int
	fail  map[string]error
}

func newFakeServer(policy Policy) *fakeServer {
	return &fakeServer{
		policy:   policy,
		users:    map[int64]UserRef{},
		files:    map[int64]File{},
		requests: map[int64]*AccessRequest{},
		clock:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		calls:    map[string]int{},
		fail:     map[string]error{},
	}
}

func (f *fakeServer) addUser(id int64, email string) UserRef {
	u := UserRef{ID: id, Email: email}
	f.users[id] = u
	return u
}

func (f *fakeServer) addFile(id int64, name string, owner UserRef, public bool) File {
	file := File{ID: id, Name: name, Type: "application/pdf", Size: 2048, Public: public, Owner: owner, UploadedAt: f.clock}
	f.files[id] = file
	return file
}

func (f *fakeServer) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeServer) enter(op string) error {
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeServer) CreateRequest(_ context.Context, sess Session, fileID int64, message string) (*AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateRequest"); err != nil {
		return nil, err
	}

	file, ok := f.files[fileID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	var existing *AccessRequest
	for _, r := range f.requests {
		if r.File.ID == fileID && r.Requester.ID == sess.UserID {
			existing = r
		}
	}

	reopen, err := CheckSubmit(file, sess.UserID, existing, f.policy)
	if err != nil {
		return nil, err
	}

	now := f.tick()
	if reopen {
		existing.Status = StatusPending
		existing.Message = message
		existing.RequestedAt = now
		existing.RespondedAt = nil
		cp := *existing
		return &cp, nil
	}

	f.nextID++
	r := &AccessRequest{
		ID:          f.nextID,
		Requester:   f.users[sess.UserID],
		Owner:       file.Owner,
		File:        FileRef{ID: file.ID, Name: file.Name},
		Status:      StatusPending,
		Message:     message,
		RequestedAt: now,
	}
	f.requests[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeServer) list(match func(*AccessRequest) bool) []AccessRequest {
	out := []AccessRequest{}
	for _, r := range f.requests {
		if match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeServer) ListReceived(_ context.Context, sess Session) ([]AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListReceived"); err != nil {
		return nil, err
	}
	return f.list(func(r *AccessRequest) bool { return r.Owner.ID == sess.UserID }), nil
}

func (f *fakeServer) ListSent(_ context.Context, sess Session) ([]AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListSent"); err != nil {
		return nil, err
	}
	return f.list(func(r *AccessRequest) bool { return r.Requester.ID == sess.UserID }), nil
}

func (f *fakeServer) SetStatus(_ context.Context, sess Session, requestID int64, status RequestStatus) (*AccessRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SetStatus"); err != nil {
		return nil, err
	}

	r, ok := f.requests[requestID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := CheckResolve(*r, sess.UserID, status); err != nil {
		return nil, err
	}
	now := f.tick()
	r.Status = status
	r.RespondedAt = &now
	cp := *r
	return &cp, nil
}

func (f *fakeServer) DeleteRequest(_ context.Context, sess Session, requestID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteRequest"); err != nil {
		return err
	}

	r, ok := f.requests[requestID]
	if !ok {
		return common.ErrorNotFound
	}
	if err := CheckWithdraw(*r, sess.UserID); err != nil {
		return err
	}
	delete(f.requests, requestID)
	return nil
}

func (f *fakeServer) ListOwned(_ context.Context, sess Session) ([]File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []File
	for _, file := range f.files {
		if file.Owner.ID == sess.UserID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeServer) ListPublic(_ context.Context, _ Session) ([]File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []File
	for _, file := range f.files {
		if file.Public {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeServer) ListOthersPrivate(_ context.Context, sess Session) ([]FileView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListOthersPrivate"); err != nil {
		return nil, err
	}

	idx := IndexByFile(f.list(func(r *AccessRequest) bool { return r.Requester.ID == sess.UserID }), sess.UserID)
	var files []File
	for _, file := range f.files {
		if file.Owner.ID != sess.UserID && !file.Public {
			files = append(files, file)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return DeriveAll(files, sess.UserID, idx, f.policy), nil
}
