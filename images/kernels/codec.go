package kernels

// Channel is the bit offset of an 8-bit channel inside a packed pixel.
type Channel uint

// Channel offsets of the packed 0xAARRGGBB layout.
const (
	ChannelBlue  Channel = 0
	ChannelGreen Channel = 8
	ChannelRed   Channel = 16
	ChannelAlpha Channel = 24
)

// Extract returns the 8-bit value of channel c in pixel p.
func Extract(p uint32, c Channel) uint8 {
	return uint8(p >> c)
}

// Pack composes a pixel from its four channels.
//
// Arguments:
//   - a, r, g, b: channel values.
//
// Returns:
//   - uint32: the packed pixel; Extract on it returns the inputs unchanged.
func Pack(a, r, g, b uint8) uint32 {
	return uint32(a)<<ChannelAlpha | uint32(r)<<ChannelRed | uint32(g)<<ChannelGreen | uint32(b)
}

// split unpacks p into accumulator order.
func split(p uint32) [4]uint32 {
	return [4]uint32{p >> 24, (p >> 16) & 0xff, (p >> 8) & 0xff, p & 0xff}
}

func join(c [4]uint32) uint32 {
	return c[0]<<24 | c[1]<<16 | c[2]<<8 | c[3]
}
