/*
Package schema declares the request shape of every authentication flow and
validates untrusted input against it.

Validation deliberately reports only the first issue, in declared field
order, so a form shows exactly one inline error at a time. Messages are the
Portuguese strings rendered to end users.
*/
package schema
