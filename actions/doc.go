/*
Package actions dispatches the authentication flows.

Each method of a Dispatcher is one flow: it re-validates input with
package schema (never trusting client-side checks), invokes the external
auth provider and normalizes whatever comes back into a Result. Provider
error codes with user-meaningful translations are mapped here; everything
else passes through verbatim, except on sign-in, where every credential
failure deliberately collapses into one ambiguous message so the flow
never leaks whether an account exists.
*/
package actions
