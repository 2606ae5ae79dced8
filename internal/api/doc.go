// Package api is the HTTP client for the document-chat backend.
//
// # Overview
//
// A Client targets a single base URL and exposes one method per backend
// operation:
//
//   - Query: POST /query with {"query": ...}
//   - Math: POST /math with {"expression": ...}
//   - Upload: POST /upload, multipart with every file under "files"
//   - ListDocuments: GET /documents
//   - DeleteDocument: DELETE /documents/{filename}
//   - DeleteAllDocuments: DELETE /documents
//
// # Errors
//
// Transport failures, non-2xx responses and undecodable bodies all wrap
// ErrRequestFailed. Callers that only need the two-outcome contract check
// errors.Is(err, api.ErrRequestFailed); the status code, when there was one,
// is available through *StatusError for logging.
//
// # Usage
//
//	c, err := api.New("http://localhost:8000", api.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	resp, err := c.Query(ctx, "What is in the contract?")
package api
