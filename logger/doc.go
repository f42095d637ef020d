/*
Package logger provides leveled, colorized logging for a portaria application.

A PortariaLogger prints to stdout. When the SENTRY_DSN environment variable
is set, New upgrades the logger to a SentryLogger, which additionally ships
error-level and above events to Sentry. A LogContext carries the request,
user and error relevant to a logging event; sensitive form fields are
scrubbed before serialization.
*/
package logger
