// Package transport performs the HTTP exchange with the Bot API.
//
// Parameters are sent as JSON unless one of them names a local file, in
// which case the request is streamed as multipart/form-data. GET requests
// carry their parameters in the query string. Responses are never rejected
// for their HTTP status: the decoded envelope is returned and the caller
// classifies it. Only failures to complete the exchange become errors
// (*tg.NetworkError), and only those are retried.
package transport
