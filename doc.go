/*
Package ircscript implements the scripting engine at the heart of an
interactive IRC client in the ircII/EPIC5 tradition: a symbol table, a call
stack, a text-mode $-expander, an infix expression evaluator, and the
event/hook, ignore, lastlog, and keybinding subsystems built on top of them.

The engine is library-first. cmd/ircscript wires it to a terminal for
interactive use, but every package here is importable and testable on its
own, the way the teacher this module is built from (jcorbin/gothird) keeps
its VM mechanics separate from its I/O plumbing.
*/
package ircscript
