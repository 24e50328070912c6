package access

// Derive projects file for viewerID. byFileID maps file ids to the viewer's
// own most recent request for that file; a missing entry means no request was
// ever made. Derive is pure and cheap, so callers recompute it whenever
// either list changes.
func Derive(file File, viewerID int64, byFileID map[int64]AccessRequest, policy Policy) FileView {
	v := FileView{
		File:          file,
		RequestStatus: NoRequest,
		IsOwner:       file.Owner.ID == viewerID,
	}

	req, found := byFileID[file.ID]
	if found {
		v.RequestStatus = req.Status
		v.RequestID = req.ID
		v.RequestMessage = req.Message
	}

	v.HasAccess = v.IsOwner || file.Public || (found && req.Status == StatusApproved)

	if !v.IsOwner && !file.Public && !v.HasAccess {
		switch {
		case !found:
			v.CanRequest = true
		case req.Status == StatusRejected:
			v.CanRequest = policy.AllowResubmitAfterReject
		}
	}

	return v
}

// DeriveAll applies Derive to every file.
func DeriveAll(files []File, viewerID int64, byFileID map[int64]AccessRequest, policy Policy) []FileView {
	out := make([]FileView, 0, len(files))
	for _, f := range files {
		out = append(out, Derive(f, viewerID, byFileID, policy))
	}
	return out
}

// IndexByFile keeps, per file, the most recent request sent by viewerID.
// Requests of other users are ignored.
func IndexByFile(requests []AccessRequest, viewerID int64) map[int64]AccessRequest {
	idx := make(map[int64]AccessRequest, len(requests))
	for _, r := range requests {
		if r.Requester.ID != viewerID {
			continue
		}
		prev, ok := idx[r.File.ID]
		if !ok || newer(r, prev) {
			idx[r.File.ID] = r
		}
	}
	return idx
}

func newer(a, b AccessRequest) bool {
	if a.RequestedAt.Equal(b.RequestedAt) {
		return a.ID > b.ID
	}
	return a.RequestedAt.After(b.RequestedAt)
}
