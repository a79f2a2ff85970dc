package command

import (
	"strconv"

	"github.com/suxuehui/jt808-deprecated/internal/protocol/jt808"
)

// argCursor 顺序消费命令参数
type argCursor struct {
	args []string
	i    int
}

func (c *argCursor) done() bool { return c.i >= len(c.args) }

func (c *argCursor) next() (string, error) {
	if c.done() {
		return "", errBadArgument
	}
	v := c.args[c.i]
	c.i++
	return v, nil
}

func (c *argCursor) u32hex() (uint32, error) {
	s, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errBadArgument
	}
	return uint32(v), nil
}

func (c *argCursor) u32dec() (uint32, error) {
	s, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errBadArgument
	}
	return uint32(v), nil
}

// coordinate 十进制度数转10^-6度整数
func (c *argCursor) coordinate() (uint32, error) {
	s, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errBadArgument
	}
	return uint32(v * 1e6), nil
}

func (c *argCursor) bcdTime() ([6]byte, error) {
	s, err := c.next()
	if err != nil {
		return [6]byte{}, err
	}
	t, err := jt808.BCDTime(s)
	if err != nil {
		return [6]byte{}, errBadArgument
	}
	return t, nil
}

func (c *argCursor) setAreaType() (byte, error) {
	s, err := c.next()
	if err != nil {
		return 0, err
	}
	switch s {
	case "update":
		return jt808.AreaUpdate, nil
	case "append":
		return jt808.AreaAppend, nil
	case "modify":
		return jt808.AreaModify, nil
	}
	return 0, errBadArgument
}

// areaCommon 读取 id 与属性字，可选字段由属性位决定是否在参数里
func (c *argCursor) areaCommon() (jt808.AreaCommon, error) {
	var a jt808.AreaCommon
	id, err := c.u32hex()
	if err != nil {
		return a, err
	}
	attr, err := c.u32hex()
	if err != nil {
		return a, err
	}
	a.ID = id
	a.Attr = jt808.AreaAttr(attr)
	return a, nil
}

func (c *argCursor) areaOptionals(a *jt808.AreaCommon) error {
	if a.Attr.ByTime() {
		start, err := c.bcdTime()
		if err != nil {
			return err
		}
		end, err := c.bcdTime()
		if err != nil {
			return err
		}
		a.StartTime, a.EndTime = start, end
	}
	if a.Attr.SpeedLimit() {
		speed, err := c.u32dec()
		if err != nil {
			return err
		}
		dur, err := c.u32dec()
		if err != nil {
			return err
		}
		a.MaxSpeed = uint16(speed)
		a.Overspeed = uint8(dur)
	}
	return nil
}

// parseCircularAreas 解析: <update|append|modify> 然后重复
// <id> <attr> <lat> <lon> <radius> [start end] [maxspeed duration]
func parseCircularAreas(args []string) (*jt808.Envelope, error) {
	c := &argCursor{args: args}
	setType, err := c.setAreaType()
	if err != nil {
		return nil, err
	}
	env := &jt808.Envelope{SetAreaType: setType, AreaKind: jt808.AreaCircular}
	for !c.done() {
		var area jt808.CircularArea
		if area.AreaCommon, err = c.areaCommon(); err != nil {
			return nil, err
		}
		if area.Center.Latitude, err = c.coordinate(); err != nil {
			return nil, err
		}
		if area.Center.Longitude, err = c.coordinate(); err != nil {
			return nil, err
		}
		if area.Radius, err = c.u32dec(); err != nil {
			return nil, err
		}
		if err = c.areaOptionals(&area.AreaCommon); err != nil {
			return nil, err
		}
		env.Circulars = append(env.Circulars, area)
	}
	if len(env.Circulars) == 0 {
		return nil, errBadArgument
	}
	return env, nil
}

// parseRectangleAreas 解析: <update|append|modify> 然后重复
// <id> <attr> <ul-lat> <ul-lon> <br-lat> <br-lon> [start end] [maxspeed duration]
func parseRectangleAreas(args []string) (*jt808.Envelope, error) {
	c := &argCursor{args: args}
	setType, err := c.setAreaType()
	if err != nil {
		return nil, err
	}
	env := &jt808.Envelope{SetAreaType: setType, AreaKind: jt808.AreaRectangle}
	for !c.done() {
		var area jt808.RectangleArea
		if area.AreaCommon, err = c.areaCommon(); err != nil {
			return nil, err
		}
		if area.UpperLeft.Latitude, err = c.coordinate(); err != nil {
			return nil, err
		}
		if area.UpperLeft.Longitude, err = c.coordinate(); err != nil {
			return nil, err
		}
		if area.BottomRight.Latitude, err = c.coordinate(); err != nil {
			return nil, err
		}
		if area.BottomRight.Longitude, err = c.coordinate(); err != nil {
			return nil, err
		}
		if err = c.areaOptionals(&area.AreaCommon); err != nil {
			return nil, err
		}
		env.Rectangles = append(env.Rectangles, area)
	}
	if len(env.Rectangles) == 0 {
		return nil, errBadArgument
	}
	return env, nil
}

// parsePolygonAreas 解析: <update|append|modify> 然后重复
// <id> <attr> [start end] [maxspeed duration] <count> count×(<lat> <lon>)
func parsePolygonAreas(args []string) (*jt808.Envelope, error) {
	c := &argCursor{args: args}
	setType, err := c.setAreaType()
	if err != nil {
		return nil, err
	}
	env := &jt808.Envelope{SetAreaType: setType, AreaKind: jt808.AreaPolygon}
	for !c.done() {
		var area jt808.PolygonArea
		if area.AreaCommon, err = c.areaCommon(); err != nil {
			return nil, err
		}
		if err = c.areaOptionals(&area.AreaCommon); err != nil {
			return nil, err
		}
		count, err := c.u32dec()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < count; i++ {
			var v jt808.Coordinate
			if v.Latitude, err = c.coordinate(); err != nil {
				return nil, err
			}
			if v.Longitude, err = c.coordinate(); err != nil {
				return nil, err
			}
			area.Vertices = append(area.Vertices, v)
		}
		env.Polygons = append(env.Polygons, area)
	}
	if len(env.Polygons) == 0 {
		return nil, errBadArgument
	}
	return env, nil
}
