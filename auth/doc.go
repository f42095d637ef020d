// Package auth exposes the HTTP surface of the authentication flows:
// sign-up, sign-in, sign-out, forgot/reset password and email
// verification, plus the gates that keep signed-in and signed-out
// visitors on their respective sides of the app.
package auth
