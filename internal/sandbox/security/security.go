// Package security defines the isolation settings applied inside the
// sandbox-init helper before a submission's command is exec'd.
package security

// IsolationProfile describes namespace, filesystem-jail, and seccomp
// settings for one task profile (e.g. "cpp", "python", "lean").
type IsolationProfile struct {
	// RootFS, when set, is chrooted into before exec. Empty means no
	// chroot: the command sees the host filesystem, and since the
	// drivers set no bind mounts, its writes outside the scratch dir
	// are limited only by host file permissions.
	RootFS string
	// SeccompProfile is a path to a JSON syscall allow/deny list.
	SeccompProfile string
	// DisableNetwork removes network access via a fresh net namespace
	// when the engine runs with namespaces enabled.
	DisableNetwork bool
}

// ProfileResolver maps a profile name (as set on spec.RunSpec.Profile)
// to the isolation settings that should apply to it.
type ProfileResolver interface {
	Resolve(profile string) (IsolationProfile, error)
}
