// Package accesslog writes the request access log.
//
// The middleware is fiber's logger configured from props.AccessLogOption. Lines go to
// a DailyWriter that appends to <logDir>/<filePrefix><date><fileSuffix> and opens a new
// file when the date changes. The date uses Go layout syntax (default 2006-01-02).
//
// A non UTF-8 fileEncoding re-encodes every line before it reaches the file.
// conditionIf and conditionUnless name request locals: a request is logged only when
// the conditionIf local is set and the conditionUnless local is not.
package accesslog
