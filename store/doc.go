// Package store persists conversations between turns.
//
// A Sessions store keeps one Record per conversation: its agent.Session
// plus a title and timestamps. Records are encoded as JSON and written
// through an Adapter, either in memory or as one file per record in a
// directory:
//
//	adapter, err := store.NewDirAdapter(".steward/sessions")
//	if err != nil {
//	    return err
//	}
//	sessions := store.NewSessions(adapter)
//
//	rec, err := sessions.Create(ctx)
//	...
//	rec.Session = rec.Session.Advance(ac, reply)
//	err = sessions.Save(ctx, rec)
package store
