// Package cli implements the interactive ATM shell: first-run PIN setup,
// the numbered menu loop and the prompts behind each menu item.
//
// Every menu item asks for the PIN afresh and goes through
// services.SessionGate; the shell itself holds no account state. PINs are
// read without echo when stdin is a terminal and wiped after use.
//
// An optional input timeout bounds each prompt inside an operation. When it
// fires the session ends, the way a cash machine returns the card.
package cli
