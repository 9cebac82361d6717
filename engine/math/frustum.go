package math

// Plane is ax + by + cz + d = 0 with (a, b, c) the normal.
type Plane struct {
	Normal   Vec3
	Distance float32
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(point Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum holds six planes with the positive half-space inside.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts the planes of a combined view * projection
// matrix (Gribb/Hartmann). With row vectors, the clip-space x, y, z and w
// coefficients are the columns of Data, so the indices below read column j
// as Data[j], Data[4+j], Data[8+j], Data[12+j].
func NewFrustumFromMatrix(viewProj Mat4) Frustum {
	d := viewProj.Data
	col := func(j int) Vec4 {
		return Vec4{d[j], d[4+j], d[8+j], d[12+j]}
	}
	x, y, z, w := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromVec4(w.Add(x))
	f.Planes[FrustumRight] = planeFromVec4(w.Add(x.MulScalar(-1)))
	f.Planes[FrustumBottom] = planeFromVec4(w.Add(y))
	f.Planes[FrustumTop] = planeFromVec4(w.Add(y.MulScalar(-1)))
	f.Planes[FrustumNear] = planeFromVec4(w.Add(z))
	f.Planes[FrustumFar] = planeFromVec4(w.Add(z.MulScalar(-1)))
	return f
}

func planeFromVec4(v Vec4) Plane {
	p := Plane{Normal: Vec3{v.X, v.Y, v.Z}, Distance: v.W}
	length := p.Normal.Length()
	if length > 0 {
		inv := 1.0 / length
		p.Normal = p.Normal.MulScalar(inv)
		p.Distance *= inv
	}
	return p
}

// Valid reports whether every plane has a usable normal.
func (f Frustum) Valid() bool {
	for _, p := range f.Planes {
		if p.Normal.LengthSquared() < 0.5 || !IsFinite(p.Distance) {
			return false
		}
	}
	return true
}

func (f Frustum) IntersectsSphere(s Sphere) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsAABB uses the positive vertex test; it may report boxes near
// frustum corners as visible.
func (f Frustum) IntersectsAABB(e Extents3D) bool {
	for _, p := range f.Planes {
		v := e.Min
		if p.Normal.X >= 0 {
			v.X = e.Max.X
		}
		if p.Normal.Y >= 0 {
			v.Y = e.Max.Y
		}
		if p.Normal.Z >= 0 {
			v.Z = e.Max.Z
		}
		if p.SignedDistance(v) < 0 {
			return false
		}
	}
	return true
}
