package transcoder

type ab struct {
	A uint32 `host:"a"`
	B string `host:"b"`
}

type point struct {
	X int32 `host:"x"`
	Y int32 `host:"y"`
}

type pair struct {
	_ struct{} `host:",tuple"`
	A uint8
	B uint8
}

type meters float64

// enumE is enum E { S(u8, u8) }.
type enumE struct {
	_ struct{} `host:",enum"`
	S *pair
}

type polyBody struct {
	Sides uint8  `host:"sides"`
	Label string `host:"label"`
}

// figure has one variant of every shape.
type figure struct {
	_      struct{} `host:",enum"`
	Empty  *struct{}
	Circle *float64
	Rect   *[2]float64
	Poly   *polyBody
}

type tree struct {
	Value    int    `host:"value"`
	Children []tree `host:"children"`
}

type profile struct {
	Name     string            `host:"name"`
	Nickname *string           `host:"nickname,omitempty"`
	Age      *uint8            `host:"age"`
	Tags     []string          `host:"tags"`
	Scores   map[string]uint16 `host:"scores"`
	Initial  rune              `host:"initial,char"`
	Height   meters            `host:"height"`
	Internal string            `host:"-"`
	secret   string
}

func ptr[T any](v T) *T {
	return &v
}
