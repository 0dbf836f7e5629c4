// Package service contains the application-level use cases. UserService is
// the credential store: it registers users with hashed passwords, looks them
// up and verifies login credentials.
//
// Task access control lives in the access subpackage and token handling in
// the auth subpackage. Services depend on the store interfaces, never on a
// concrete database implementation.
package service
