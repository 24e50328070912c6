package access

// The checks below are the state machine of a single request. The server
// applies them authoritatively; the client runs them against its last
// snapshot to refuse obviously invalid commands without a round trip.
//
//	PENDING -> APPROVED   (owner)
//	PENDING -> REJECTED   (owner)
//	PENDING -> DELETED    (requester, withdraw)
//	REJECTED -> PENDING   (requester, resubmit; only if Policy allows)

// CheckSubmit validates a new request by requesterID for file. existing is
// the requester's current request for that file, or nil. When reopen is true
// the caller must turn the existing REJECTED request back into PENDING
// instead of creating a new one.
func CheckSubmit(file File, requesterID int64, existing *AccessRequest, policy Policy) (reopen bool, err error) {
	if file.Owner.ID == requesterID {
		return false, Errorf(Forbidden, "file %d belongs to the requester", file.ID)
	}
	if file.Public {
		return false, Errorf(Forbidden, "file %d is public", file.ID)
	}
	if existing == nil {
		return false, nil
	}

	switch existing.Status {
	case StatusPending:
		return false, Errorf(Conflict, "request %d for file %d is already pending", existing.ID, file.ID)
	case StatusApproved:
		return false, Errorf(Forbidden, "access to file %d is already granted", file.ID)
	case StatusRejected:
		if !policy.AllowResubmitAfterReject {
			return false, Errorf(Conflict, "request %d for file %d was rejected", existing.ID, file.ID)
		}
		return true, nil
	default:
		return false, Errorf(Conflict, "request %d has unknown status %q", existing.ID, existing.Status)
	}
}

// CheckResolve validates that responderID may answer req with decision.
// Ownership is checked before state so a non-owner always sees Forbidden.
func CheckResolve(req AccessRequest, responderID int64, decision RequestStatus) error {
	if decision != StatusApproved && decision != StatusRejected {
		return Errorf(Invalid, "invalid decision %q", decision)
	}
	if req.Owner.ID != responderID {
		return Errorf(Forbidden, "request %d is not addressed to user %d", req.ID, responderID)
	}
	if req.Status != StatusPending {
		return Errorf(Conflict, "request %d is already %s", req.ID, req.Status)
	}
	return nil
}

// CheckWithdraw validates that requesterID may delete req.
func CheckWithdraw(req AccessRequest, requesterID int64) error {
	if req.Requester.ID != requesterID {
		return Errorf(Forbidden, "request %d was not sent by user %d", req.ID, requesterID)
	}
	if req.Status != StatusPending {
		return Errorf(Conflict, "request %d is already %s", req.ID, req.Status)
	}
	return nil
}
