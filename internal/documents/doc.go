// Package documents tracks the backend's uploaded documents for the client.
//
// The Library is the only owner of the document list. It re-fetches the list
// after a successful upload or delete. A failed list or delete call is logged
// and leaves the previous list in place; a failed upload returns an error so
// the caller can tell the user.
package documents
