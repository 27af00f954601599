// Package auth provides the identity and access control core of the
// attendance service: signup, login, bearer token issuance and a
// token gate for protected routes.
//
// Signup:
//   - RegisterUserHandler validates a RegisterUserMessage, checks the
//     email, full name and phone number are unused (in that order),
//     hashes the password with bcrypt and persists a pending User.
//     Failures are go-errors values tagged with the offending field.
//
// Login:
//   - Auther verifies credentials through an IdentityProvider and
//     refuses pending users. Successful logins return an HS256 token
//     carrying the user id, email and role. No session is stored.
//
// Stores:
//   - IdentityStore is implemented by MemoryUsers for tests and by the
//     bun backed Users repository for sqlite and postgres. Both turn
//     duplicate inserts into conflict errors.
//
// Roles:
//   - RoleStateMachine moves users between pending, member and admin
//     through a fixed transition graph. Admission of a signup is the
//     pending to member transition.
//
// Activity sinks:
//   - ActivitySink receives signup, login, role change and token
//     rejection events.
//     Sinks run best-effort (errors are logged). MetricsActivitySink
//     counts events with prometheus.
package auth
