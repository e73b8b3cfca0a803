// Package accountsvc implements login, sessions and admin-managed user
// accounts. Passwords are stored as argon2id hashes; sessions are random
// UUID bearer tokens with a TTL.
//
//	svc := accountsvc.New(rt)
//	sess, user, err := svc.Login(ctx, "ana", "ABCDE123")
//	u, err := svc.Authenticate(ctx, sess.Token)
package accountsvc
