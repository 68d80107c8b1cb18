// Package verify checks a finished run's event log against eight independent
// safety properties:
//
//  1. InitialStation: every train first enters its line's first station.
//  2. EnterLeavePairing: each train alternates Enter and Leave, and every
//     Leave names the station of the Enter just before it.
//  3. MutualExclusion: two trains of one line never hold the same station.
//  4. ItineraryCompletion: every passenger's last event is alighting at the
//     final stop of their itinerary.
//  5. RoundTripShape: with no passengers, each train's visits are whole
//     round trips of its line.
//  6. RendezvousValidity: passengers only board or leave a train that is
//     standing at that station at that point of the log.
//  7. NoPhantomDeparture: a train only leaves the station it most recently
//     entered and has not left.
//  8. PathContinuity: each train's entered stations are a prefix of the
//     endless forward-and-back walk of its line.
//
// Check is a pure function of the topology and the log. Failures are
// reported as data, one Result per property, never as errors.
package verify
