// Package coroutine implements a small cooperative multitasking runtime.
//
// A Runtime owns a fixed-capacity registry of tasks. Each task body receives
// a *Yielder and runs until it calls Yield or returns; it is never preempted.
// Resume hands control to a task and blocks until that happens, so exactly one
// of the caller and the task body makes progress at any time.
//
// Task bodies run on their own goroutine stacks, which hold each suspended
// task's execution point between turns. Control moves over unbuffered
// channels, which also provide the happens-before edges that let the registry
// go without locks.
//
// Lifecycle:
//
//	Ready --Resume--> Running --Yield--> Suspended --Resume--> Running --return--> Finished
//
// Finished is terminal. Example:
//
//	rt := coroutine.New()
//	id, _ := rt.Create(func(y *coroutine.Yielder) {
//	    fmt.Println("first turn")
//	    y.Yield()
//	    fmt.Println("second turn")
//	})
//	_ = rt.Resume(id) // first turn
//	_ = rt.Resume(id) // second turn, task Finished
package coroutine
