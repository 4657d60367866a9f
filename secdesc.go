// Package secdesc reads, builds and renders Windows security descriptors.
//
// A security descriptor is handled in its self-relative form: one
// contiguous allocation holding the header followed by the owner SID,
// group SID, SACL and DACL. The package hands out that allocation inside a
// LocalBox, which is the sole owner of the memory; SecurityDescriptor, SID
// and ACL values are borrowed views into it and are only valid while the
// box is open.
//
// On Windows the SDDL codec and the descriptor lookup delegate to the OS.
// Everywhere else a portable codec produces byte-identical descriptors, and
// lookup is available on Linux for CIFS mounts via the security descriptor
// extended attribute.
package secdesc
