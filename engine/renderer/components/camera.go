package components

import (
	"github.com/spaghettifunk/hdrp/engine/math"
)

/** @brief Distinguishes game cameras from the editor scene view. */
type CameraType uint8

const (
	CameraTypeGame CameraType = iota
	/** @brief Editor scene view; gets an extra depth bind at the end of the frame. */
	CameraTypeSceneView
)

/**
 * @brief Represents a camera that can be used for rendering. The
 * render pipeline reads it once per frame to build an HDCamera.
 */
type Camera struct {
	Name string
	Type CameraType
	/** @brief Size of the target in pixels. */
	PixelWidth  int
	PixelHeight int
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead.
	 */
	EulerRotation math.Vec3
	/** @brief Vertical field of view in radians. */
	FOV      float32
	NearClip float32
	FarClip  float32
	/** @brief Name of the post-process stack attached to this camera, empty for none. */
	PostProcess string
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/**
	 * @brief The view matrix of this camera.
	 * NOTE: IMPORTANT: Do not get this directly, use GetView() instead.
	 */
	ViewMatrix math.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera(name string, width, height int) *Camera {
	camera := &Camera{Name: name, PixelWidth: width, PixelHeight: height}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = math.NewVec3Zero()
	c.Position = math.NewVec3Zero()
	c.FOV = math.DegToRad(60.0)
	c.NearClip = 0.1
	c.FarClip = 1000.0
	c.IsDirty = false
	c.ViewMatrix = math.NewMat4Identity()
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) SetEulerRotation(rotation math.Vec3) {
	c.EulerRotation = rotation
	c.IsDirty = true
}

func (c *Camera) SetPixelSize(width, height int) {
	c.PixelWidth = width
	c.PixelHeight = height
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		rotation := math.NewMat4EulerXYZ(c.EulerRotation.X, c.EulerRotation.Y, c.EulerRotation.Z)
		translation := math.NewMat4Translation(c.Position)

		c.ViewMatrix = rotation.Mul(translation)
		c.ViewMatrix = c.ViewMatrix.Inverse()

		c.IsDirty = false
	}
	return c.ViewMatrix
}

func (c *Camera) GetProjection() math.Mat4 {
	aspect := float32(1.0)
	if c.PixelHeight > 0 {
		aspect = float32(c.PixelWidth) / float32(c.PixelHeight)
	}
	return math.NewMat4Perspective(c.FOV, aspect, c.NearClip, c.FarClip)
}

func (c *Camera) Forward() math.Vec3 {
	view := c.GetView()
	return view.Forward()
}

func (c *Camera) MoveForward(amount float32) {
	direction := c.Forward()
	direction = direction.MulScalar(amount)
	c.Position = c.Position.Add(direction)
	c.IsDirty = true
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation.Y += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation.X += amount

	// Clamp to avoid Gimbal lock.
	limit := float32(1.55334306) // 89 degrees, or equivalent to deg_to_rad(89.0f);
	c.EulerRotation.X = math.Clamp(c.EulerRotation.X, -limit, limit)

	c.IsDirty = true
}
