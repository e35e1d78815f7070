package control

import (
	"bytes"
	"unsafe"

	"github.com/drmkit/kmsctl/internal/drm"
	"github.com/drmkit/kmsctl/internal/drm/ioctl"
)

// PropNameLen is the kernel's fixed length for property and enum names.
const PropNameLen = 32

type sysObjGetProperties struct {
	propsPtr      uint64
	propValuesPtr uint64
	countProps    uint32
	objID         uint32
	objType       uint32
}

type sysGetProperty struct {
	valuesPtr      uint64
	enumBlobPtr    uint64
	propID         uint32
	flags          uint32
	name           [PropNameLen]uint8
	countValues    uint32
	countEnumBlobs uint32
}

type sysPropertyEnum struct {
	value uint64
	name  [PropNameLen]uint8
}

var (
	ioctlModeObjGetProperties = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysObjGetProperties{})), drm.IOCTLBase, 0xb9)

	ioctlModeGetProperty = ioctl.NewCode(ioctl.Read|ioctl.Write,
		uint16(unsafe.Sizeof(sysGetProperty{})), drm.IOCTLBase, 0xaa)
)

// PropertyEnum is one named value of an enum property.
type PropertyEnum struct {
	Value uint64
	Name  string
}

// Property describes a property exposed by some resource.
type Property struct {
	ID     uint32
	Name   string
	Flags  uint32
	Values []uint64
	Enums  []PropertyEnum
}

// GetProperties lists a resource's property ids and current values, routed
// by the handle type's object tag.
func GetProperties(dev drm.Device, res Resource) (ids []uint32, values []uint64, err error) {
	var raw sysObjGetProperties
	raw.objID = res.Raw()
	raw.objType = res.ObjectType()
	if err := dev.Ioctl(ioctlModeObjGetProperties, unsafe.Pointer(&raw)); err != nil {
		return nil, nil, err
	}

	if raw.countProps > 0 {
		ids = make([]uint32, raw.countProps)
		raw.propsPtr = uint64(uintptr(unsafe.Pointer(&ids[0])))
		values = make([]uint64, raw.countProps)
		raw.propValuesPtr = uint64(uintptr(unsafe.Pointer(&values[0])))
	}

	if err := dev.Ioctl(ioctlModeObjGetProperties, unsafe.Pointer(&raw)); err != nil {
		return nil, nil, err
	}
	return ids, values, nil
}

// GetProperty loads a property's metadata: name, flags, and legal values or
// enum entries.
func GetProperty(dev drm.Device, id uint32) (*Property, error) {
	var raw sysGetProperty
	raw.propID = id
	if err := dev.Ioctl(ioctlModeGetProperty, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	var (
		values []uint64
		enums  []sysPropertyEnum
	)
	if raw.countValues > 0 {
		values = make([]uint64, raw.countValues)
		raw.valuesPtr = uint64(uintptr(unsafe.Pointer(&values[0])))
	}
	if raw.countEnumBlobs > 0 {
		enums = make([]sysPropertyEnum, raw.countEnumBlobs)
		raw.enumBlobPtr = uint64(uintptr(unsafe.Pointer(&enums[0])))
	}

	if err := dev.Ioctl(ioctlModeGetProperty, unsafe.Pointer(&raw)); err != nil {
		return nil, err
	}

	prop := &Property{
		ID:     raw.propID,
		Flags:  raw.flags,
		Values: values,
	}
	name, _, _ := bytes.Cut(raw.name[:], []byte{0})
	prop.Name = string(name)
	for _, e := range enums {
		n, _, _ := bytes.Cut(e.name[:], []byte{0})
		prop.Enums = append(prop.Enums, PropertyEnum{Value: e.value, Name: string(n)})
	}
	return prop, nil
}
