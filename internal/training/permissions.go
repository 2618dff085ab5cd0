package training

// Ownership predicates. A resource without an owner is never accessible.

func CanAccessMovement(userID int64, movement Movement) bool {
	return owns(userID, movement.Author)
}

func CanAccessWorkout(userID int64, workout Workout) bool {
	return owns(userID, workout.User)
}

// CanAccessMovementLog checks the log's ownership, which follows the workout it was recorded in.
func CanAccessMovementLog(userID int64, logWorkout Workout) bool {
	return CanAccessWorkout(userID, logWorkout)
}

// CanWriteMovementLog requires the user to own both the referenced movement and workout.
func CanWriteMovementLog(userID int64, movement Movement, workout Workout) bool {
	return CanAccessMovement(userID, movement) && CanAccessWorkout(userID, workout)
}

func owns(userID int64, owner *int64) bool {
	return owner != nil && *owner == userID
}
