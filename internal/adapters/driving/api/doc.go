// Package api provides the HTTP interface of the service.
//
// Routes:
//   - POST /api/upload_pdf?user_id=ID   multipart field "file"
//   - POST /api/chat?user_id=ID         {"messages": "question"}
//   - GET  /health                      readiness of the language model
//   - GET  /metadata, GET /api/config   static service descriptors
//   - GET  /metrics                     Prometheus exposition, when configured
//
// Errors are returned as {"detail": "message"} with the status chosen by
// statusFor. Every response carries an X-Request-ID header.
package api
