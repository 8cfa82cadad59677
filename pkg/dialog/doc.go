/*
Package dialog implements the three conversation tracks of Benepick.

Each track is split in two layers:

  - a pure transition function (StepRegistration, StepOnboarding, StepChat)
    mapping the current step, slots and message to the next step, slots,
    response and a requested side effect;
  - a service (RegistrationService, OnboardingService, ChatService) that loads
    the session, prefetches the facts a transition needs, performs the side
    effect through the ports, persists the session and returns a result that
    can be rendered as JSON or streamed with package stream.

Registration and onboarding sessions are created by a message without a live
session ID; that call only greets and never consumes the message. Chat
processes its first message immediately.
*/
package dialog
