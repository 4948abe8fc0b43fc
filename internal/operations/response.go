package operations

import "net/http"

const (
	MessageSuccess = "Backup completed successfully"
	MessageFailure = "Backup failed"
)

// Response is the only shape a scheduled invocation returns.
type Response struct {
	StatusCode int          `json:"statusCode"`
	Body       ResponseBody `json:"body"`
}

type ResponseBody struct {
	Message          string `json:"message"`
	SnapshotID       string `json:"snapshot_id,omitempty"`
	MetadataLocation string `json:"metadata_location,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Response collapses r into the invocation response. Both failing steps map
// to the same 500 shape; the step is kept in logs and metrics only.
func (r Result) Response() Response {
	if r.Err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Body: ResponseBody{
				Message: MessageFailure,
				Error:   r.Err.Err.Error(),
			},
		}
	}
	return Response{
		StatusCode: http.StatusOK,
		Body: ResponseBody{
			Message:          MessageSuccess,
			SnapshotID:       r.SnapshotID,
			MetadataLocation: r.MetadataLocation,
		},
	}
}
