// Package session owns the state of one chat conversation.
//
// # Overview
//
// A Manager holds the ordered transcript and the sending flag. It is built
// once at the application root and handed to whichever components read or
// change the conversation. There is no package-level state.
//
// # Submissions
//
// SubmitQuery and SubmitMath follow the same sequence:
//
//  1. Ignore input that is empty after trimming
//  2. Append the user message
//  3. Raise the sending flag
//  4. Call the backend
//  5. Append the answer, or the fixed fallback for that kind of submission
//  6. Lower the sending flag (deferred, runs on every path)
//
// Neither method returns an error. Backend failures are logged and replaced
// by QueryFallback or MathFallback in the transcript.
//
// Overlapping submissions are allowed. Replies are appended in the order the
// backend answers, not the order the questions were asked.
//
// # Reset
//
// Reset clears the transcript and cancels outstanding submissions. A reply
// that arrives for a submission started before the reset is dropped.
//
// # Events
//
// Subscribe delivers message, reset and sending events for UIs:
//
//	events, _ := mgr.Subscribe(ctx)
//	for ev := range events {
//	    if ev.Type == session.EventMessage {
//	        render(ev.Message)
//	    }
//	}
package session
