package metadata

/** @brief Describes a type of job */
type JobType int

const (
	/**
	 * @brief A general job that does not have any specific thread requirements.
	 * This means it matters little which job thread this job runs on.
	 */
	JOB_TYPE_GENERAL JobType = 0x02
	/**
	 * @brief CPU-side preparation of data that is uploaded to the GPU later in
	 * the frame, e.g. coarse light binning.
	 */
	JOB_TYPE_GPU_PREPARE JobType = 0x08
)

/**
 * @brief Describes a job to be run by the job system.
 */
type JobTask struct {
	/** @brief The type of job. */
	JobType JobType
	/** @brief Invoked on a worker with InputParams. Required. */
	OnStart func(params interface{}) (interface{}, error)
	/** @brief Invoked with the result of OnStart when it succeeds. Optional. */
	OnComplete func(result interface{})
	/** @brief Invoked with the error of OnStart when it fails. Optional. */
	OnFailure func(err error)
	/** @brief Data to be passed to the entry point upon execution. */
	InputParams interface{}
	/** @brief Always invoked last, whatever the outcome. Optional. */
	OnCompletionCallback func()
}
