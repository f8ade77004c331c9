// Package reconcile applies scene commands from a controller to the
// compositor and keeps the layout of every container current.
//
// A Reconciler mutates the shadow registry, the compositor and the layout
// tree together under one render lock. Commands that reference unknown
// nodes or carry invalid values are logged with an error code and
// dropped; the connection that sent them is not affected.
//
// A Scheduler runs layout ticks. Each tick polls the intrinsic size of
// measured sources, recomputes dirty containers and writes position and
// bounds to the scene items whose layout changed:
//
//	rec := reconcile.New(shadow.NewRegistry(), comp, flex.New())
//	sched := reconcile.NewScheduler(rec)
//	go sched.Run(ctx, 16*time.Millisecond)
//
// # Style
//
// The "style" prop of create and update commands maps onto layout
// attributes. Each update recomputes the full style: attributes missing
// from the prop return to their defaults and rejected values keep their
// previous value. Sizes are numbers, "<n>px", "<n>%" or a bare numeric
// string.
package reconcile
