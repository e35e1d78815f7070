// Package control implements the legacy KMS control plane: typed handles to
// kernel display resources, point-in-time snapshots of their state, and the
// requests that commit new state (mode-sets and hardware cursor updates).
//
// Every handle is an opaque identifier owned by the kernel. The package never
// validates identifiers client-side; the kernel is the only authority on
// whether a handle is live, and every operation here is a single blocking
// ioctl exchange that the kernel applies or rejects atomically.
package control

import "fmt"

// Kernel object-type tags (DRM_MODE_OBJECT_*). Property queries are routed
// by the tag of the handle they target.
const (
	ObjectAny         uint32 = 0
	ObjectCRTC        uint32 = 0xcccccccc
	ObjectConnector   uint32 = 0xc0c0c0c0
	ObjectEncoder     uint32 = 0xe0e0e0e0
	ObjectMode        uint32 = 0xdededede
	ObjectProperty    uint32 = 0xb0b0b0b0
	ObjectFramebuffer uint32 = 0xfbfbfbfb
	ObjectBlob        uint32 = 0xbbbbbbbb
	ObjectPlane       uint32 = 0xeeeeeeee
)

// Resource is any typed handle to a kernel-side display resource. The
// object-type association is per handle type, fixed at compile time.
type Resource interface {
	Raw() uint32
	ObjectType() uint32
}

// CRTC is a handle to a display controller. A zero value means no CRTC.
type CRTC uint32

// NewCRTC wraps a raw identifier previously returned by the kernel.
func NewCRTC(raw uint32) CRTC { return CRTC(raw) }

// Raw returns the kernel identifier.
func (c CRTC) Raw() uint32 { return uint32(c) }

// ObjectType implements Resource.
func (CRTC) ObjectType() uint32 { return ObjectCRTC }

func (c CRTC) String() string { return fmt.Sprintf("crtc(%d)", uint32(c)) }

// Connector is a handle to a physical or logical output port. A zero value
// means no connector.
type Connector uint32

// NewConnector wraps a raw identifier previously returned by the kernel.
func NewConnector(raw uint32) Connector { return Connector(raw) }

// Raw returns the kernel identifier.
func (c Connector) Raw() uint32 { return uint32(c) }

// ObjectType implements Resource.
func (Connector) ObjectType() uint32 { return ObjectConnector }

func (c Connector) String() string { return fmt.Sprintf("connector(%d)", uint32(c)) }

// Encoder is a handle to the hardware that converts CRTC output into a
// connector's signal format.
type Encoder uint32

// NewEncoder wraps a raw identifier previously returned by the kernel.
func NewEncoder(raw uint32) Encoder { return Encoder(raw) }

// Raw returns the kernel identifier.
func (e Encoder) Raw() uint32 { return uint32(e) }

// ObjectType implements Resource.
func (Encoder) ObjectType() uint32 { return ObjectEncoder }

func (e Encoder) String() string { return fmt.Sprintf("encoder(%d)", uint32(e)) }

// Framebuffer is a handle to a kernel-registered scanout buffer description.
// A zero value means no framebuffer attached.
type Framebuffer uint32

// NewFramebuffer wraps a raw identifier previously returned by the kernel.
func NewFramebuffer(raw uint32) Framebuffer { return Framebuffer(raw) }

// Raw returns the kernel identifier.
func (f Framebuffer) Raw() uint32 { return uint32(f) }

// ObjectType implements Resource.
func (Framebuffer) ObjectType() uint32 { return ObjectFramebuffer }

func (f Framebuffer) String() string { return fmt.Sprintf("fb(%d)", uint32(f)) }

// Plane is a handle to a hardware compositing plane.
type Plane uint32

// NewPlane wraps a raw identifier previously returned by the kernel.
func NewPlane(raw uint32) Plane { return Plane(raw) }

// Raw returns the kernel identifier.
func (p Plane) Raw() uint32 { return uint32(p) }

// ObjectType implements Resource.
func (Plane) ObjectType() uint32 { return ObjectPlane }

func (p Plane) String() string { return fmt.Sprintf("plane(%d)", uint32(p)) }
