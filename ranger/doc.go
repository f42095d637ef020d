/*
Package ranger initializes and manages a portaria app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type.
A [Ranger] ought to be constructed with [New],
customized as needed with the available RangerOptions.

[*Ranger.Guide] begins a portaria app's web server.
By default, [*Ranger.Guide] listens on [DefaultHost]:[DefaultPort] (localhost:3000),
assuming either a reverse proxy proxies requests
or only a client application makes direct requests to the web server.

Upon calling [*Ranger.Guide], all routes configured up to that point are now active.
Stop that web server with [*Ranger.Shutdown]
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures a portaria app through environment variables.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - APP_TITLE: a short title for the application; names the session cookie
  - BASE_URL: the base URL the application runs on; default: http://localhost:3000
  - CONTACT_US_EMAIL: the email address end users can reach the operators at
  - ENVIRONMENT: the environment the application is running in; cf. [portaria.Environment]
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - PORT: the port the application should listen on; default: :3000
  - PROVIDER_ANON_KEY: the publishable API key for the auth provider
  - PROVIDER_JWT_SECRET: the secret verifying provider-issued access tokens
  - PROVIDER_URL: the root URL of the auth provider project
  - SENTRY_DSN: the DSN error reports are sent to; unset disables Sentry
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - SESSION_REDIS_PASSWORD: the password for authenticating to the Redis server backing sessions
  - SESSION_REDIS_URI: the address of a Redis server to back sessions with; unset stores sessions in cookies
*/
package ranger
