/*
Package h11 implements a sans-I/O HTTP/1.1 protocol engine.

h11 converts between a stream of bytes and a stream of high-level protocol
events for both the client and server roles of a single HTTP/1.1 connection.
It performs no network I/O, no timers, no threading and no TLS: callers feed
it received bytes and outgoing events, and it hands back parsed events and
bytes to send.

The engine is built around four operations on a Connection:

    * Send writes an outgoing Event and returns the bytes to transmit.
    * ReceiveData hands received bytes (or, with a zero-length slice, peer
      EOF) to the Connection.
    * NextEvent drives the incremental parser and returns the next Event,
      or the NeedData/Paused sentinels.
    * StartNextCycle resets a keep-alive connection for its next
      request/response exchange.

A Connection owns no file descriptors and performs no I/O of its own; it is
meant to sit underneath a caller-supplied transport, whether blocking,
threaded, or cooperatively scheduled.
*/
package h11
