package access

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var (
	alice = UserRef{ID: 1, Email: "alice@example.com"}
	bob   = UserRef{ID: 2, Email: "bob@example.com"}
)

func privateFile(id int64, owner UserRef) File {
	return File{ID: id, Name: "report.pdf", Type: "application/pdf", Size: 100, Owner: owner}
}

func requestFor(id, fileID int64, requester, owner UserRef, status RequestStatus) AccessRequest {
	return AccessRequest{
		ID:          id,
		Requester:   requester,
		Owner:       owner,
		File:        FileRef{ID: fileID},
		Status:      status,
		Message:     "please",
		RequestedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDerive_OwnerAlwaysHasAccess(t *testing.T) {
	f := privateFile(10, alice)
	statuses := []RequestStatus{StatusPending, StatusApproved, StatusRejected}

	for _, policy := range []Policy{{AllowResubmitAfterReject: true}, {AllowResubmitAfterReject: false}} {
		v := Derive(f, alice.ID, nil, policy)
		assert.True(t, v.HasAccess)
		assert.False(t, v.CanRequest)
		assert.True(t, v.IsOwner)

		for _, st := range statuses {
			idx := map[int64]AccessRequest{10: requestFor(1, 10, alice, alice, st)}
			v := Derive(f, alice.ID, idx, policy)
			assert.True(t, v.HasAccess, "status %s", st)
			assert.False(t, v.CanRequest, "status %s", st)
		}
	}
}

func TestDerive_PublicFileVisibleToAnyone(t *testing.T) {
	f := privateFile(10, alice)
	f.Public = true

	for _, viewer := range []int64{alice.ID, bob.ID, 99} {
		v := Derive(f, viewer, nil, DefaultPolicy())
		assert.True(t, v.HasAccess, "viewer %d", viewer)
		assert.False(t, v.CanRequest, "viewer %d", viewer)
	}
}

func TestDerive_PrivateFileWithoutRequest(t *testing.T) {
	f := privateFile(10, alice)

	got := Derive(f, bob.ID, map[int64]AccessRequest{}, DefaultPolicy())
	want := FileView{File: f, RequestStatus: NoRequest, CanRequest: true}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Derive() mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_ByStatus(t *testing.T) {
	f := privateFile(10, alice)

	tests := []struct {
		name           string
		status         RequestStatus
		policy         Policy
		wantAccess     bool
		wantCanRequest bool
	}{
		{"pending", StatusPending, DefaultPolicy(), false, false},
		{"approved", StatusApproved, DefaultPolicy(), true, false},
		{"rejected, resubmit allowed", StatusRejected, Policy{AllowResubmitAfterReject: true}, false, true},
		{"rejected, resubmit denied", StatusRejected, Policy{AllowResubmitAfterReject: false}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFor(5, 10, bob, alice, tt.status)
			v := Derive(f, bob.ID, map[int64]AccessRequest{10: req}, tt.policy)

			assert.Equal(t, tt.status, v.RequestStatus)
			assert.Equal(t, tt.wantAccess, v.HasAccess)
			assert.Equal(t, tt.wantCanRequest, v.CanRequest)
			assert.Equal(t, "please", v.RequestMessage)
			assert.EqualValues(t, 5, v.RequestID)
		})
	}
}

func TestDerive_IgnoresRequestsForOtherFiles(t *testing.T) {
	f := privateFile(10, alice)
	idx := map[int64]AccessRequest{11: requestFor(5, 11, bob, alice, StatusApproved)}

	v := Derive(f, bob.ID, idx, DefaultPolicy())
	assert.Equal(t, NoRequest, v.RequestStatus)
	assert.False(t, v.HasAccess)
	assert.True(t, v.CanRequest)
	assert.Empty(t, v.RequestMessage)
}

func TestIndexByFile(t *testing.T) {
	old := requestFor(1, 10, bob, alice, StatusRejected)
	recent := requestFor(2, 10, bob, alice, StatusPending)
	recent.RequestedAt = old.RequestedAt.Add(time.Hour)
	foreign := requestFor(3, 11, alice, bob, StatusPending)
	other := requestFor(4, 12, bob, alice, StatusApproved)

	idx := IndexByFile([]AccessRequest{recent, old, foreign, other}, bob.ID)

	assert.Len(t, idx, 2)
	assert.EqualValues(t, 2, idx[10].ID)
	assert.EqualValues(t, 4, idx[12].ID)
	_, ok := idx[11]
	assert.False(t, ok, "requests of other users must be ignored")
}

func TestIndexByFile_SameTimestampHigherIDWins(t *testing.T) {
	a := requestFor(7, 10, bob, alice, StatusRejected)
	b := requestFor(8, 10, bob, alice, StatusPending)

	assert.EqualValues(t, 8, IndexByFile([]AccessRequest{b, a}, bob.ID)[10].ID)
	assert.EqualValues(t, 8, IndexByFile([]AccessRequest{a, b}, bob.ID)[10].ID)
}

func TestDeriveAll(t *testing.T) {
	files := []File{privateFile(1, alice), privateFile(2, bob)}
	views := DeriveAll(files, bob.ID, nil, DefaultPolicy())

	assert.Len(t, views, 2)
	assert.True(t, views[0].CanRequest)
	assert.True(t, views[1].IsOwner)
}
